package shared

// Application roles. Only guards are subject to geofencing.
const (
	RoleGuard         = "guard"
	RoleCompanyAdmin  = "company_admin"
	RolePlatformAdmin = "platform_admin"
)

// ValidRole reports whether the role is one of the known application roles.
func ValidRole(role string) bool {
	switch role {
	case RoleGuard, RoleCompanyAdmin, RolePlatformAdmin:
		return true
	}
	return false
}
