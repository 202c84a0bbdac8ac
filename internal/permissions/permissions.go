// Package permissions resolves supplier back-office roles into capability
// sets. The resolver is pure: overrides saved on a user are merged by callers
// via Effective, never by the resolver itself.
package permissions

type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
)

// Set is the full capability map consulted by dashboard gating. Client-side
// checks are UX hints only; the backend re-verifies every request.
type Set struct {
	CanViewDashboard     bool `json:"canViewDashboard"`
	CanViewProducts      bool `json:"canViewProducts"`
	CanCreateProducts    bool `json:"canCreateProducts"`
	CanEditProducts      bool `json:"canEditProducts"`
	CanDeleteProducts    bool `json:"canDeleteProducts"`
	CanViewOrders        bool `json:"canViewOrders"`
	CanUpdateFulfillment bool `json:"canUpdateFulfillment"`
	CanViewPayouts       bool `json:"canViewPayouts"`
	CanViewRevenue       bool `json:"canViewRevenue"`
	CanViewSettings      bool `json:"canViewSettings"`
	CanEditProfile       bool `json:"canEditProfile"`
	CanManageStaff       bool `json:"canManageStaff"`
}

// ForRole maps a role to its default capability set. Unknown or empty roles
// fail closed (all capabilities false) since the result gates rendering.
func ForRole(role Role) Set {
	switch role {
	case RoleOwner:
		return Set{
			CanViewDashboard: true, CanViewProducts: true, CanCreateProducts: true,
			CanEditProducts: true, CanDeleteProducts: true, CanViewOrders: true,
			CanUpdateFulfillment: true, CanViewPayouts: true, CanViewRevenue: true,
			CanViewSettings: true, CanEditProfile: true, CanManageStaff: true,
		}
	case RoleManager:
		// Everything except destructive operations and staff management.
		return Set{
			CanViewDashboard: true, CanViewProducts: true, CanCreateProducts: true,
			CanEditProducts: true, CanViewOrders: true, CanUpdateFulfillment: true,
			CanViewPayouts: true, CanViewRevenue: true, CanViewSettings: true,
			CanEditProfile: true,
		}
	case RoleStaff:
		// Read-only plus fulfillment updates. Not even profile edits;
		// a divergence needs an explicit override.
		return Set{
			CanViewDashboard: true, CanViewProducts: true, CanViewOrders: true,
			CanUpdateFulfillment: true,
		}
	default:
		return Set{}
	}
}

// Effective returns the capability set to apply for a user: a saved override
// replaces role defaults wholesale, otherwise the role defaults apply.
func Effective(role Role, override *Set) Set {
	if override != nil {
		return *override
	}
	return ForRole(role)
}

// Normalize prepares an edited capability set for persistence. A set identical
// to the role defaults persists as nil ("use role defaults") so future changes
// to the defaults are not masked by a redundant override.
func Normalize(role Role, edited Set) *Set {
	if edited == ForRole(role) {
		return nil
	}
	return &edited
}

func RoleLabel(role Role) string {
	switch role {
	case RoleOwner:
		return "Owner"
	case RoleManager:
		return "Manager"
	case RoleStaff:
		return "Staff"
	default:
		return "Unknown"
	}
}

// RoleBadgeColor returns the style token dashboards use for role chips.
func RoleBadgeColor(role Role) string {
	switch role {
	case RoleOwner:
		return "purple"
	case RoleManager:
		return "blue"
	case RoleStaff:
		return "gray"
	default:
		return "gray"
	}
}
