package feed

import (
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrfta/gridcache-go/console/models"
)

func TestFeed(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Feed Suite")
}

var _ = Describe("event envelopes", func() {
	It("stamps each message with a unique id and its type tag", func() {
		r := models.Resource{ID: uuid.New(), Name: "edge-gateway-01", Status: models.StatusActive}

		a := NewResourceUpdated(r)
		b := NewResourceUpdated(r)

		Expect(a.Type).To(Equal(TypeResourceUpdated))
		Expect(a.ID).ToNot(BeEmpty())
		Expect(a.ID).ToNot(Equal(b.ID))
		Expect(a.At).ToNot(BeEmpty())

		payload, ok := a.Data.(ResourceUpdated)
		Expect(ok).To(BeTrue())
		Expect(payload.ResourceID).To(Equal(r.ID.String()))
		Expect(payload.Status).To(Equal(models.StatusActive))
	})

	It("clamps utilization in metrics ticks", func() {
		r := models.Resource{ID: uuid.New(), CPUUtilization: 140, MemoryUtilization: -5}

		tick := NewMetricsTick(r).Data.(MetricsTick)
		Expect(tick.CPUUtilization).To(Equal(100.0))
		Expect(tick.MemoryUtilization).To(Equal(0.0))
	})
})

var _ = Describe("drift", func() {
	It("stays within the step and inside [0, 100]", func() {
		for i := 0; i < 200; i++ {
			next := drift(50, 12)
			Expect(next).To(BeNumerically(">=", 38))
			Expect(next).To(BeNumerically("<=", 62))
		}
		for i := 0; i < 200; i++ {
			Expect(drift(1, 12)).To(BeNumerically(">=", 0))
			Expect(drift(99, 12)).To(BeNumerically("<=", 100))
		}
	})
})
