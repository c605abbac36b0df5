package model

// Identity is who the credential belongs to.
type Identity struct {
	Username string `json:"username" yaml:"username"`
	IsAdmin  bool   `json:"is_admin" yaml:"is_admin"`
}

// Session pairs the opaque API credential with the identity it was issued
// for.
type Session struct {
	Credential string    `json:"-" yaml:"-"`
	Identity   *Identity `json:"identity" yaml:"identity"`
}

// Valid reports whether the session can be used. A credential without an
// identity counts as logged out.
func (s *Session) Valid() bool {
	return s != nil && s.Credential != "" && s.Identity != nil && s.Identity.Username != ""
}

// IsAdmin is false for invalid sessions.
func (s *Session) IsAdmin() bool {
	return s.Valid() && s.Identity.IsAdmin
}

// LoginResult is the body of a successful POST /login.
type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	Message  string `json:"message,omitempty"`
}

// User is a desk account as stored by the API.
type User struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
}
