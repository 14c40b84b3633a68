package storage_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"orghub/storage"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	. "github.com/onsi/gomega"
)

func TestOSSStore(t *testing.T) {
	RegisterTestingT(t)

	var deleted []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = append(deleted, r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer server.Close()

	bucket, err := storage.BuildBucket(server.URL, "ak", "sk", "orghub")
	Expect(err).To(BeNil())
	store := &storage.OSSStore{Bucket: bucket}

	tracer := mocktracer.New()
	parent := tracer.StartSpan("request")
	ctx := opentracing.ContextWithSpan(context.Background(), parent)

	Expect(store.Remove(ctx, "/news/a.png")).To(BeNil())
	Expect(deleted).To(Equal([]string{"/orghub/news/a.png"}))

	spans := tracer.FinishedSpans()
	Expect(len(spans)).To(Equal(1))
	Expect(spans[0].OperationName).To(Equal("delete-object"))
	Expect(spans[0].Tag("object-key")).To(Equal("/news/a.png"))
	Expect(spans[0].Tag("error")).To(Equal(false))
}
