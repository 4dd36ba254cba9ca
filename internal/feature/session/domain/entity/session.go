// Package entity defines the domain entities for the session feature.
package entity

import "time"

// Session records one authenticated vendor session. The daily token is valid
// for a fixed eight-hour window; at most one row exists per user id.
type Session struct {
	UserID    string    // Vendor user id
	Token     string    // Daily session token
	Active    bool      // False after an auth failure or past expiry
	CreatedAt time.Time // When the session was established
	ExpiresAt time.Time // CreatedAt + 8h
}

// AuthResult is the normalized outcome of a vendor session-setup attempt.
// The vendor answers in three shapes (structured Ok, structured failure with
// an emsg field, bare boolean true); the session client folds all three into
// this before anything downstream sees them.
type AuthResult struct {
	OK      bool
	UserID  string
	Message string
}

// IsExpired returns true if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsValid returns true if the session is active and not expired.
func (s *Session) IsValid() bool {
	return s.Active && !s.IsExpired()
}
