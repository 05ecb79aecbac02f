package sessions

import (
	"strings"
	"time"
)

// Session is one signed-in period for a user. It ends on sign-out or expiry.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// Active reports whether the session is neither ended nor expired at now.
func (s Session) Active(now time.Time) bool {
	if s.EndedAt != nil {
		return false
	}
	return now.Before(s.ExpiresAt)
}

var userIDReplacer = strings.NewReplacer(".", "_", "@", "_")

// UserIDFromEmail derives the storage owner id from an e-mail address.
func UserIDFromEmail(email string) string {
	return userIDReplacer.Replace(strings.ToLower(strings.TrimSpace(email)))
}
