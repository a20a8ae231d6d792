package models

// Resource category tags.
const (
	CategoryCompute   = "COMPUTE"
	CategoryStorage   = "STORAGE"
	CategoryNetwork   = "NETWORK"
	CategoryDatabase  = "DATABASE"
	CategoryCDN       = "CDN"
	CategoryContainer = "CONTAINER"
)

// Categories lists every valid resource category.
var Categories = []string{
	CategoryCompute, CategoryStorage, CategoryNetwork,
	CategoryDatabase, CategoryCDN, CategoryContainer,
}

// Resource operational statuses. There is no transition graph: any status
// may replace any other.
const (
	StatusActive         = "ACTIVE"
	StatusIdle           = "IDLE"
	StatusOverloaded     = "OVERLOADED"
	StatusMaintenance    = "MAINTENANCE"
	StatusDecommissioned = "DECOMMISSIONED"
)

// Statuses lists every valid resource status.
var Statuses = []string{
	StatusActive, StatusIdle, StatusOverloaded,
	StatusMaintenance, StatusDecommissioned,
}

// Departments lists the owning departments.
var Departments = []string{
	"ENGINEERING", "PLATFORM", "DATA", "SECURITY",
	"FINANCE", "MARKETING", "SUPPORT", "RESEARCH",
}

// Providers lists the hosting providers.
var Providers = []string{"AWS", "GCP", "AZURE", "ON_PREM"}

// Access request statuses.
const (
	RequestPending  = "PENDING"
	RequestApproved = "APPROVED"
	RequestDenied   = "DENIED"
)

// Validation bounds for resource attributes.
const (
	MaxTags        = 10
	MaxCostPerHour = 10000.0
	MaxNameLength  = 120
)

// Roles, weakest first. Access control is a linear comparison over this
// order, nothing more.
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

var roleRank = map[string]int{
	RoleViewer:   0,
	RoleOperator: 1,
	RoleAdmin:    2,
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// RoleAtLeast reports whether have meets or exceeds want.
func RoleAtLeast(have, want string) bool {
	h, ok := roleRank[have]
	if !ok {
		return false
	}
	w, ok := roleRank[want]
	if !ok {
		return false
	}
	return h >= w
}

func oneOf(value string, valid []string) bool {
	for _, v := range valid {
		if v == value {
			return true
		}
	}
	return false
}

// ValidCategory reports whether value is a known category.
func ValidCategory(value string) bool { return oneOf(value, Categories) }

// ValidStatus reports whether value is a known resource status.
func ValidStatus(value string) bool { return oneOf(value, Statuses) }

// ValidDepartment reports whether value is a known department.
func ValidDepartment(value string) bool { return oneOf(value, Departments) }

// ValidProvider reports whether value is a known provider.
func ValidProvider(value string) bool { return oneOf(value, Providers) }

// ClampUtilization bounds a utilization percentage to [0, 100] for display.
// Stored values are advisory; only the display is clamped.
func ClampUtilization(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
