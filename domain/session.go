package domain

import "time"

// Session is a login record binding an opaque credential to a user and
// to the network origin the credential was issued to. A credential
// presented from a different origin is refused, which forces
// re-authentication after an address change instead of allowing a
// hijacked token to travel.
type Session struct {
	ID            string
	UserID        string
	Credential    string
	OriginAddress string
	ExpiresAt     time.Time
}

// Expired reports whether the session is past its lifetime at the given
// instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
