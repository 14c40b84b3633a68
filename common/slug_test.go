package common_test

import (
	"orghub/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Slugify", func() {
	It("should keep an existing slug unchanged", func() {
		Expect(common.Slugify("create-events")).To(Equal("create-events"))
	})

	It("should lowercase and join words with dashes", func() {
		Expect(common.Slugify("Create Events")).To(Equal("create-events"))
		Expect(common.Slugify("  Read   Categories ")).To(Equal("read-categories"))
		Expect(common.Slugify("snake_case_name")).To(Equal("snake-case-name"))
	})

	It("should drop punctuation and fold accents", func() {
		Expect(common.Slugify("Hello, World!")).To(Equal("hello-world"))
		Expect(common.Slugify("Événements & Actualités")).To(Equal("evenements-actualites"))
		Expect(common.Slugify("team@home")).To(Equal("team-at-home"))
	})

	It("should return empty string when nothing is left", func() {
		Expect(common.Slugify("!!!")).To(Equal(""))
		Expect(common.Slugify("")).To(Equal(""))
	})
})
