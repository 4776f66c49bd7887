package domain

// Identity is the "who am I" record returned by the backend for a credential.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// DisplayName prefers the full name and falls back to the username.
func (i *Identity) DisplayName() string {
	if i == nil {
		return ""
	}
	if i.FullName != "" {
		return i.FullName
	}
	return i.Username
}

// Registration carries the fields accepted by the sign-up endpoint.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// DefaultRegistrationRole is the role the backend accepts for self sign-up.
const DefaultRegistrationRole = "business_owner"
