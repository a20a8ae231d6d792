package api

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

func validCreateRequest() CreateResourceRequest {
	return CreateResourceRequest{
		Name:        "edge-gateway-01",
		Category:    "NETWORK",
		Department:  "PLATFORM",
		Provider:    "AWS",
		Region:      "us-east-1",
		Status:      "ACTIVE",
		CostPerHour: 1.25,
		Tags:        []string{"edge", "prod"},
	}
}

var _ = Describe("validateResource", func() {
	It("accepts a well-formed payload", func() {
		req := validCreateRequest()
		Expect(validateResource(&req)).To(BeNil())
	})

	It("requires a name and bounds its length", func() {
		req := validCreateRequest()
		req.Name = ""
		Expect(validateResource(&req).Fields).To(HaveKeyWithValue("name", "required"))

		req.Name = strings.Repeat("x", 121)
		Expect(validateResource(&req).Fields).To(HaveKeyWithValue("name", "too long"))

		req.Name = strings.Repeat("x", 120)
		Expect(validateResource(&req)).To(BeNil())
	})

	It("rejects unknown enum values", func() {
		req := validCreateRequest()
		req.Category = "QUANTUM"
		req.Department = "LEGAL"
		req.Provider = "DO"
		req.Status = "BROKEN"

		verr := validateResource(&req)
		Expect(verr.Fields).To(HaveKey("category"))
		Expect(verr.Fields).To(HaveKey("department"))
		Expect(verr.Fields).To(HaveKey("provider"))
		Expect(verr.Fields).To(HaveKey("status"))
	})

	It("bounds the hourly cost", func() {
		req := validCreateRequest()
		req.CostPerHour = -0.01
		Expect(validateResource(&req).Fields).To(HaveKeyWithValue("costPerHour", "must be non-negative"))

		req.CostPerHour = 10000.01
		Expect(validateResource(&req).Fields).To(HaveKeyWithValue("costPerHour", "exceeds ceiling"))

		req.CostPerHour = 0
		Expect(validateResource(&req)).To(BeNil())
	})

	It("bounds the tag list and rejects empty tags", func() {
		req := validCreateRequest()
		req.Tags = make([]string, 11)
		for i := range req.Tags {
			req.Tags[i] = "t"
		}
		Expect(validateResource(&req).Fields).To(HaveKeyWithValue("tags", "too many tags"))

		req.Tags = []string{"ok", ""}
		Expect(validateResource(&req).Fields).To(HaveKeyWithValue("tags", "empty tag"))

		req.Tags = nil
		Expect(validateResource(&req)).To(BeNil())
	})

	It("collects every violation in one pass", func() {
		req := CreateResourceRequest{}
		verr := validateResource(&req)
		Expect(verr).ToNot(BeNil())
		Expect(len(verr.Fields)).To(BeNumerically(">=", 5))
		Expect(verr.Error()).To(HavePrefix("validation failed: "))
	})
})
