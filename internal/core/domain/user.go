package domain

// User is a member of the user/role directory. The engine only consults the
// directory to resolve roles and to verify that assigned users exist.
type User struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Roles        []RoleCode `json:"roles"`
	IsActive     bool       `json:"isActive"`
	AuditFields
}

// HasRole reports whether the user holds the given role.
func (u User) HasRole(code RoleCode) bool {
	for _, r := range u.Roles {
		if r == code {
			return true
		}
	}
	return false
}
