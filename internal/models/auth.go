package models

// Credentials is a username/password pair resolved for one outgoing request.
// It is never serialised and its password is redacted when formatted.
type Credentials struct {
	Username string `json:"-" toml:"-"`
	Password string `json:"-" toml:"-"`
}

// String implements fmt.Stringer without exposing the password
func (c Credentials) String() string {
	return "Credentials{Username: " + c.Username + ", Password: [REDACTED]}"
}

// GoString keeps %#v from printing the password
func (c Credentials) GoString() string {
	return c.String()
}

// MarshalText keeps encoders that fall back to text from serialising credentials
func (c Credentials) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}
