package domain

import "time"

// Session is the in-memory record of who is logged in on this client.
// The zero value is the logged-out state.
type Session struct {
	Credential string    `json:"-"`
	Identity   *Identity `json:"user,omitempty"`
	// ExpiresAt is read from the credential when it carries an exp claim.
	// Zero when unknown.
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// IsAuthenticated is true iff a credential is present.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Credential != ""
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Clone returns a copy that shares nothing with s.
func (s *Session) Clone() Session {
	if s == nil {
		return Session{}
	}
	out := Session{Credential: s.Credential, ExpiresAt: s.ExpiresAt}
	if s.Identity != nil {
		id := *s.Identity
		out.Identity = &id
	}
	return out
}
