package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/Seann-Moser/chatrelay/credential"
	"go.uber.org/zap"
)

// ErrNoSession means the request carries no session reference.
var ErrNoSession = errors.New("no session")

// Source tells where a resolved token came from.
type Source string

const (
	SourceUser     Source = "user"
	SourceFallback Source = "fallback"
)

// Credential is the token chosen for one request. It is never persisted.
type Credential struct {
	Token  string
	UserID string
	TeamID string
	Source Source
}

type contextKey string

const credentialKey contextKey = "RESOLVED_CREDENTIAL"

// WithContext attaches the credential to ctx.
func (c Credential) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, credentialKey, c)
}

// FromContext returns the credential attached by WithContext.
func FromContext(ctx context.Context) (Credential, bool) {
	c, ok := ctx.Value(credentialKey).(Credential)
	return c, ok
}

// Resolver picks the token for a request: the signed-in user's stored
// token when there is one, otherwise the configured fallback token.
type Resolver struct {
	carrier  Carrier
	store    credential.Store
	fallback string
	logger   *zap.Logger
}

// NewResolver returns a Resolver. fallback may be empty; the remote API
// will then reject calls made with it.
func NewResolver(carrier Carrier, store credential.Store, fallback string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{carrier: carrier, store: store, fallback: fallback, logger: logger}
}

// Resolve picks the request's token. It falls back only when there is no
// session or the session has no stored record; any other store failure is
// returned so a signed-in user's call never goes out under the fallback.
func (r *Resolver) Resolve(req *http.Request) (Credential, error) {
	rec, err := r.Session(req)
	switch {
	case err == nil:
		return Credential{Token: rec.AccessToken, UserID: rec.UserID, TeamID: rec.TeamID, Source: SourceUser}, nil
	case errors.Is(err, ErrNoSession), errors.Is(err, credential.ErrNotFound):
		return Credential{Token: r.fallback, Source: SourceFallback}, nil
	default:
		r.logger.Error("credential store unavailable", zap.Error(err))
		return Credential{}, err
	}
}

// Session loads the stored record referenced by the request's session
// cookie. It returns ErrNoSession without touching the store when the
// request has no cookie.
func (r *Resolver) Session(req *http.Request) (*credential.Record, error) {
	userID, ok := r.carrier.Read(req)
	if !ok {
		return nil, ErrNoSession
	}
	return r.store.Get(req.Context(), userID)
}

// Carrier exposes the session carrier so handlers can set or clear it.
func (r *Resolver) Carrier() Carrier {
	return r.carrier
}
