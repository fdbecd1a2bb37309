package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Seann-Moser/chatrelay/chat"
	"github.com/Seann-Moser/chatrelay/credential"
	"github.com/Seann-Moser/chatrelay/nonce"
	"github.com/Seann-Moser/chatrelay/oauth"
	"github.com/Seann-Moser/chatrelay/session"
	"go.uber.org/zap"
)

// Authorizer starts and completes the redirect-based authorization flow.
type Authorizer interface {
	AuthorizeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Grant, error)
}

var _ Authorizer = &oauth.Exchanger{}

// Deps wires the components the HTTP surface delegates to.
type Deps struct {
	Authorizer   Authorizer
	Guard        *nonce.Guard
	StateCarrier session.Carrier
	Resolver     *session.Resolver
	Store        credential.Store
	Introspector *session.Introspector
	Gateway      *chat.Gateway
	FrontendURL  string
	SessionTTL   time.Duration
	Logger       *zap.Logger
}

type Server struct {
	auth         Authorizer
	guard        *nonce.Guard
	state        session.Carrier
	resolver     *session.Resolver
	store        credential.Store
	introspector *session.Introspector
	gateway      *chat.Gateway
	frontendURL  string
	sessionTTL   time.Duration
	logger       *zap.Logger
}

func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := d.SessionTTL
	if ttl <= 0 {
		ttl = credential.DefaultTTL
	}
	return &Server{
		auth:         d.Authorizer,
		guard:        d.Guard,
		state:        d.StateCarrier,
		resolver:     d.Resolver,
		store:        d.Store,
		introspector: d.Introspector,
		gateway:      d.Gateway,
		frontendURL:  d.FrontendURL,
		sessionTTL:   ttl,
		logger:       logger,
	}
}

// Handler returns the routed, logged HTTP surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /auth/slack", s.StartAuthHandler)
	mux.HandleFunc("GET "+session.CallbackPath, s.CallbackHandler)
	mux.HandleFunc("GET /auth/status", s.StatusHandler)
	mux.HandleFunc("GET /auth/logout", s.LogoutHandler)

	mux.Handle("POST /api/messages", s.WithCredential(http.HandlerFunc(s.SendMessageHandler)))
	mux.Handle("GET /api/messages", s.WithCredential(http.HandlerFunc(s.ListMessagesHandler)))
	mux.Handle("PUT /api/messages", s.WithCredential(http.HandlerFunc(s.EditMessageHandler)))
	mux.Handle("DELETE /api/messages", s.WithCredential(http.HandlerFunc(s.DeleteMessageHandler)))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return RequestLogger(s.logger)(mux)
}
