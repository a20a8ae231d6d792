package gridcache_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	gridcache "github.com/nrfta/gridcache-go"
)

func TestGridCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GridCache Suite")
}

func strPtr(s string) *string { return &s }

var _ = Describe("Page", func() {
	Describe("Normalize", func() {
		It("derives HasMore from the cursor", func() {
			p := gridcache.Page[int]{Items: []int{1}, NextCursor: strPtr("abc")}
			p.Normalize()
			Expect(p.HasMore).To(BeTrue())

			p = gridcache.Page[int]{Items: []int{1}, HasMore: true}
			p.Normalize()
			Expect(p.HasMore).To(BeFalse())
		})

		It("treats an empty cursor as absent", func() {
			p := gridcache.Page[int]{NextCursor: strPtr("")}
			p.Normalize()
			Expect(p.NextCursor).To(BeNil())
			Expect(p.HasMore).To(BeFalse())
		})
	})

	Describe("Flatten", func() {
		It("concatenates page items in slice order", func() {
			pages := []gridcache.Page[string]{
				{Items: []string{"a", "b"}},
				{Items: []string{"c"}},
				{Items: nil},
				{Items: []string{"d", "e"}},
			}
			Expect(gridcache.Flatten(pages)).To(Equal([]string{"a", "b", "c", "d", "e"}))
		})

		It("returns an empty sequence for zero pages", func() {
			Expect(gridcache.Flatten[int](nil)).To(BeEmpty())
		})
	})

	Describe("ClonePages", func() {
		It("produces an independent copy", func() {
			pages := []gridcache.Page[string]{
				{Items: []string{"a", "b"}, NextCursor: strPtr("next")},
			}

			clone := gridcache.ClonePages(pages)
			clone[0].Items[0] = "mutated"
			*clone[0].NextCursor = "mutated"

			Expect(pages[0].Items[0]).To(Equal("a"))
			Expect(*pages[0].NextCursor).To(Equal("next"))
		})
	})
})

var _ = Describe("Key", func() {
	It("canonicalizes params in sorted order", func() {
		a := gridcache.NewListKey("resources", map[string]string{"status": "ACTIVE", "category": "COMPUTE"})
		b := gridcache.NewListKey("resources", map[string]string{"category": "COMPUTE", "status": "ACTIVE"})

		Expect(a.String()).To(Equal(b.String()))
		Expect(a.String()).To(Equal("resources/list?category=COMPUTE&status=ACTIVE"))
	})

	It("separates keys with different filters", func() {
		active := gridcache.NewListKey("resources", map[string]string{"status": "ACTIVE"})
		idle := gridcache.NewListKey("resources", map[string]string{"status": "IDLE"})
		Expect(active.String()).ToNot(Equal(idle.String()))
	})

	Describe("predicates", func() {
		list := gridcache.NewListKey("resources", map[string]string{"status": "ACTIVE"})
		detail := gridcache.NewDetailKey("resources", "res-1")
		other := gridcache.NewListKey("projects", nil)

		It("matches by domain", func() {
			pred := gridcache.MatchDomain("resources")
			Expect(pred(list)).To(BeTrue())
			Expect(pred(detail)).To(BeTrue())
			Expect(pred(other)).To(BeFalse())
		})

		It("matches lists only", func() {
			pred := gridcache.MatchLists("resources")
			Expect(pred(list)).To(BeTrue())
			Expect(pred(detail)).To(BeFalse())
		})

		It("matches one exact key", func() {
			pred := gridcache.MatchExact(list)
			Expect(pred(list)).To(BeTrue())
			Expect(pred(detail)).To(BeFalse())
		})
	})
})

var _ = Describe("Config", func() {
	It("fills defaults for the zero value", func() {
		cfg := gridcache.Config{}.WithDefaults()
		Expect(cfg.PageSize).To(Equal(50))
		Expect(cfg.FreshnessWindow).To(Equal(45 * time.Second))
		Expect(cfg.IdleEviction).To(Equal(5 * time.Minute))
		Expect(cfg.RetryCount).To(Equal(1))
	})

	It("keeps explicit values", func() {
		cfg := gridcache.Config{PageSize: 10, RetryCount: 3}.WithDefaults()
		Expect(cfg.PageSize).To(Equal(10))
		Expect(cfg.RetryCount).To(Equal(3))
	})

	It("treats a negative retry count as disabled", func() {
		cfg := gridcache.Config{RetryCount: -1}.WithDefaults()
		Expect(cfg.RetryCount).To(BeZero())
	})

	It("doubles backoff up to the cap", func() {
		cfg := gridcache.Config{
			RetryBackoff:    100 * time.Millisecond,
			RetryBackoffCap: 350 * time.Millisecond,
		}.WithDefaults()

		Expect(cfg.Backoff(0)).To(Equal(100 * time.Millisecond))
		Expect(cfg.Backoff(1)).To(Equal(200 * time.Millisecond))
		Expect(cfg.Backoff(2)).To(Equal(350 * time.Millisecond))
		Expect(cfg.Backoff(10)).To(Equal(350 * time.Millisecond))
	})
})

var _ = Describe("errors", func() {
	It("formats transport errors with status and message", func() {
		err := &gridcache.TransportError{Op: "list resources", Status: 502, Message: "bad gateway"}
		Expect(err.Error()).To(Equal("list resources: status 502: bad gateway"))
		Expect(gridcache.IsTransport(err)).To(BeTrue())
		Expect(gridcache.IsValidation(err)).To(BeFalse())
	})

	It("formats validation errors per field, sorted", func() {
		err := &gridcache.ValidationError{Fields: map[string]string{
			"name":     "required",
			"category": "unknown category",
		}}
		Expect(err.Error()).To(Equal("validation failed: category: unknown category; name: required"))
		Expect(gridcache.IsValidation(err)).To(BeTrue())
	})
})
