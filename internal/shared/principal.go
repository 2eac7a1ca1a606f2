package shared

// RoleSuperAdmin bypasses every permission check.
const RoleSuperAdmin = "SUPER_ADMIN"

// Wildcard matches any resource or action in a permission matrix.
const Wildcard = "*"

// DataScope limits which records a principal's handlers should return.
type DataScope int

const (
	ScopeAll DataScope = iota + 1
	ScopeDepartment
	ScopeOwn
)

// String returns the scope code used on the wire and in logs.
func (s DataScope) String() string {
	switch s {
	case ScopeAll:
		return "ALL"
	case ScopeDepartment:
		return "DEPARTMENT"
	case ScopeOwn:
		return "OWN"
	default:
		return "OWN"
	}
}

// DataScopeFromCode parses a stored scope code, defaulting to OWN.
func DataScopeFromCode(code int) DataScope {
	switch code {
	case 1:
		return ScopeAll
	case 2:
		return ScopeDepartment
	default:
		return ScopeOwn
	}
}

// Principal is the authenticated identity attached to one request. It is
// built after token validation and never outlives the request except inside
// a signed token and the permission-matrix cache.
type Principal struct {
	ID       int64
	Username string
	Email    string
	Name     string

	RoleCodes []string

	// Permissions maps resource code to the set of granted action codes.
	Permissions map[string][]string

	DataScope    DataScope
	DepartmentID int64
}

// IsSuperAdmin reports whether the principal carries the super-admin role.
func (p *Principal) IsSuperAdmin() bool {
	if p == nil {
		return false
	}
	for _, code := range p.RoleCodes {
		if code == RoleSuperAdmin {
			return true
		}
	}
	return false
}

// HasRole reports whether the principal carries the given role code.
func (p *Principal) HasRole(code string) bool {
	if p == nil {
		return false
	}
	for _, role := range p.RoleCodes {
		if role == code {
			return true
		}
	}
	return false
}

// HasPermission checks the resource/action pair against the permission
// matrix. Wildcards are honored on both axes and super admins always pass.
func (p *Principal) HasPermission(resource, action string) bool {
	if p == nil {
		return false
	}
	if p.IsSuperAdmin() {
		return true
	}
	if len(p.Permissions) == 0 {
		return false
	}
	actions, ok := p.Permissions[resource]
	if !ok {
		actions = p.Permissions[Wildcard]
	}
	for _, a := range actions {
		if a == action || a == Wildcard {
			return true
		}
	}
	return false
}
