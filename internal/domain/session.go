package domain

// Session is the authenticated identity and credential held by the client
// for the duration of a login. Token and User are always stored together;
// a session with only one of them is invalid and must be discarded.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Valid reports whether the session carries both a token and a user.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User != nil
}

// CredentialStore persists a session across process restarts. Implementations
// must treat partially written state as absent.
type CredentialStore interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}
