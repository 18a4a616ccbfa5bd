package rbac

// Role is the closed set of account roles. The empty string means the user
// has not chosen a role yet.
type Role string

const (
	Doctor     Role = "doctor"
	Nurse      Role = "nurse"
	Patient    Role = "patient"
	Pharmacist Role = "pharmacist"
	SuperAdmin Role = "super-admin"
)

// All returns every assignable role.
func All() []Role {
	return []Role{Doctor, Nurse, Patient, Pharmacist, SuperAdmin}
}

// Parse validates a role string coming from a request body or a cookie.
func Parse(s string) (Role, bool) {
	r := Role(s)
	switch r {
	case Doctor, Nurse, Patient, Pharmacist, SuperAdmin:
		return r, true
	}
	return "", false
}

func (r Role) String() string { return string(r) }

// DashboardPath is the role-specific landing page.
func (r Role) DashboardPath() string {
	return "/" + string(r) + "/dashboard"
}

// Prefix is the path prefix a role owns, e.g. "/doctor/".
func (r Role) Prefix() string {
	return "/" + string(r) + "/"
}

// VerifiedByDefault reports whether accounts of this role are created
// verified. Patients are; professional roles go through the admin
// verification workflow first.
func (r Role) VerifiedByDefault() bool {
	return r == Patient
}

// AllowedPrefixes is the authorization table: the set of path prefixes a role
// may enter. Super-admins may enter every role's area; everyone else only
// their own. An unknown or unassigned role is allowed nowhere.
func AllowedPrefixes(r Role) []string {
	switch r {
	case SuperAdmin:
		prefixes := make([]string, 0, len(All()))
		for _, role := range All() {
			prefixes = append(prefixes, role.Prefix())
		}
		return prefixes
	case Doctor, Nurse, Patient, Pharmacist:
		return []string{r.Prefix()}
	}
	return nil
}

// Allowed reports whether a role may enter the given base path ("/doctor/").
func Allowed(r Role, basePath string) bool {
	for _, p := range AllowedPrefixes(r) {
		if p == basePath {
			return true
		}
	}
	return false
}
