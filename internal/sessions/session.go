package sessions

import "time"

// Session is an admin refresh session. The refresh token is opaque and single-use:
// refreshing rotates it.
type Session struct {
	ID           string    `bson:"_id,omitempty" json:"id,omitempty"`
	RefreshToken string    `bson:"refresh_token" json:"refresh_token"`
	Sub          string    `bson:"sub" json:"sub"`
	Username     string    `bson:"username" json:"username"`
	ExpiresAt    time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && t.After(s.ExpiresAt)
}
