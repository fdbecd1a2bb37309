package nonce

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL bounds how long an issued nonce stays acceptable.
const DefaultTTL = 10 * time.Minute

// nonceBytes gives 256 bits of entropy.
const nonceBytes = 32

// ErrStateMismatch means the callback's state does not match the issued nonce.
var ErrStateMismatch = errors.New("state mismatch")

// Ledger records issued nonces server-side so each can be consumed once.
type Ledger interface {
	Save(ctx context.Context, nonce string, ttl time.Duration) error
	// Consume deletes nonce and reports whether it was still outstanding.
	Consume(ctx context.Context, nonce string) (bool, error)
}

// Guard issues and checks anti-forgery nonces for the authorization redirect.
// The nonce itself travels to the client and back in a cookie; a Ledger is
// optional and adds server-side single use on top of that.
type Guard struct {
	ledger Ledger
	ttl    time.Duration
}

// NewGuard returns a Guard. ledger may be nil.
func NewGuard(ledger Ledger, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{ledger: ledger, ttl: ttl}
}

// TTL is the lifetime callers should give the nonce's side channel.
func (g *Guard) TTL() time.Duration {
	return g.ttl
}

// Issue returns a fresh URL-safe nonce.
func (g *Guard) Issue(ctx context.Context) (string, error) {
	n, err := Generate()
	if err != nil {
		return "", err
	}
	if g.ledger != nil {
		if err := g.ledger.Save(ctx, n, g.ttl); err != nil {
			return "", fmt.Errorf("save nonce: %w", err)
		}
	}
	return n, nil
}

// Check verifies presented against issued. With a ledger, the issued nonce
// is consumed whatever the outcome, so a failed attempt also burns it. A
// mismatch or an already consumed nonce yields ErrStateMismatch; ledger
// failures on a matching nonce are returned wrapped.
func (g *Guard) Check(ctx context.Context, issued, presented string) error {
	match := Verify(issued, presented)
	if g.ledger == nil || issued == "" {
		if !match {
			return ErrStateMismatch
		}
		return nil
	}
	live, err := g.ledger.Consume(ctx, issued)
	if !match {
		return ErrStateMismatch
	}
	if err != nil {
		return fmt.Errorf("consume nonce: %w", err)
	}
	if !live {
		return ErrStateMismatch
	}
	return nil
}

// Generate returns 32 random bytes encoded as unpadded base64url.
func Generate() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("nonce: failed to generate: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Verify reports whether both values are present and identical.
func Verify(issued, presented string) bool {
	if issued == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(issued), []byte(presented)) == 1
}
