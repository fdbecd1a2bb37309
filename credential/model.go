package credential

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long a stored token stays readable after it was written.
const DefaultTTL = 30 * 24 * time.Hour

var (
	// ErrNotFound is returned when no live record exists for a user.
	ErrNotFound = errors.New("credential not found")
	// ErrUnavailable wraps storage failures that may succeed on a later attempt.
	ErrUnavailable = errors.New("credential store unavailable")
	// ErrMissingUserID rejects a Put without a user id.
	ErrMissingUserID = errors.New("user id is required")
)

// Record binds a chat platform user to the access token issued for them.
type Record struct {
	UserID      string    `json:"user_id" bson:"user_id"`
	TeamID      string    `json:"team_id" bson:"team_id"`
	AccessToken string    `json:"-" bson:"access_token"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Expired reports whether the record is older than ttl at now.
func (r Record) Expired(now time.Time, ttl time.Duration) bool {
	return !r.CreatedAt.Add(ttl).After(now)
}

// Store persists at most one record per user. Put always replaces the
// whole record, so the last writer wins without application locking.
type Store interface {
	Put(ctx context.Context, userID, teamID, accessToken string) error
	Get(ctx context.Context, userID string) (*Record, error)
	Delete(ctx context.Context, userID string) (bool, error)
}
