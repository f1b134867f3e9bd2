package models

// User is one row of the user table. Password holds whatever the store keeps:
// the typed password in plain mode, a bcrypt hash otherwise.
type User struct {
	Username string `json:"username"`
	Password string `json:"-"`
}
