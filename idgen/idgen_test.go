package idgen_test

import (
	"orghub/idgen"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestNextID(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should generate increasing ids", func(t *testing.T) {
		w := idgen.NewWorker()
		Expect(w).ToNot(BeNil())

		seen := map[types.ID]bool{}
		var last types.ID
		for i := 0; i < 100; i++ {
			id := idgen.NextID(w)
			Expect(id > last).To(BeTrue())
			Expect(seen[id]).To(BeFalse())
			seen[id] = true
			last = id
		}
	})
}
