package domain

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. The username is the immutable key;
// Password holds the bcrypt hash, never plaintext.
type User struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	First         string `json:"first"`
	Last          string `json:"last"`
	StreetAddress string `json:"street_address"`
	Role          string `json:"role"`
}

// Caller is the authenticated identity threaded explicitly into every core
// call. The core never re-derives it; role is an opaque attribute used only
// for ownership checks.
type Caller struct {
	Username string
	Role     string
}

// IsAdmin reports whether the caller carries the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}
