package api

import (
	gridcache "github.com/nrfta/gridcache-go"
	"github.com/nrfta/gridcache-go/console/models"
)

// validationDetails renders a per-field violation map in the error body's
// details format.
func validationDetails(fields map[string]string) string {
	return (&gridcache.ValidationError{Fields: fields}).Error()
}

// validateResource checks a create payload field by field. It returns nil
// when the payload is valid.
func validateResource(req *CreateResourceRequest) *gridcache.ValidationError {
	fields := map[string]string{}

	if req.Name == "" {
		fields["name"] = "required"
	} else if len(req.Name) > models.MaxNameLength {
		fields["name"] = "too long"
	}

	if !models.ValidCategory(req.Category) {
		fields["category"] = "unknown category"
	}
	if !models.ValidDepartment(req.Department) {
		fields["department"] = "unknown department"
	}
	if !models.ValidProvider(req.Provider) {
		fields["provider"] = "unknown provider"
	}
	if req.Region == "" {
		fields["region"] = "required"
	}
	if !models.ValidStatus(req.Status) {
		fields["status"] = "unknown status"
	}

	if req.CostPerHour < 0 {
		fields["costPerHour"] = "must be non-negative"
	} else if req.CostPerHour > models.MaxCostPerHour {
		fields["costPerHour"] = "exceeds ceiling"
	}

	if len(req.Tags) > models.MaxTags {
		fields["tags"] = "too many tags"
	} else {
		for _, tag := range req.Tags {
			if tag == "" {
				fields["tags"] = "empty tag"
				break
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &gridcache.ValidationError{Fields: fields}
}
