package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Seann-Moser/chatrelay/credential"
	"github.com/Seann-Moser/chatrelay/nonce"
	"github.com/Seann-Moser/chatrelay/oauth"
	"github.com/Seann-Moser/chatrelay/session"
	"github.com/Seann-Moser/chatrelay/utils"
	"go.uber.org/zap"
)

// reasonServerError is used when the flow fails on our side before or
// around the exchange.
const reasonServerError = "server_error"

type statusResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *session.User `json:"user,omitempty"`
}

// StartAuthHandler issues a nonce, stores it in the state cookie and
// redirects to the authorization server.
func (s *Server) StartAuthHandler(w http.ResponseWriter, r *http.Request) {
	state, err := s.guard.Issue(r.Context())
	if err != nil {
		s.logger.Error("failed to issue oauth state", zap.Error(err))
		s.redirectFailure(w, r, reasonServerError)
		return
	}
	s.state.Write(w, state, s.guard.TTL())
	http.Redirect(w, r, s.auth.AuthorizeURL(state), http.StatusFound)
}

// CallbackHandler completes the flow. Every outcome is a redirect to the
// frontend; the state cookie is cleared whatever happens.
func (s *Server) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	issued, _ := s.state.Read(r)
	s.state.Clear(w)

	q := r.URL.Query()
	if err := s.guard.Check(r.Context(), issued, q.Get("state")); err != nil {
		if errors.Is(err, nonce.ErrStateMismatch) {
			s.logger.Warn("oauth state mismatch", zap.Bool("cookie_present", issued != ""))
			s.redirectFailure(w, r, oauth.ReasonStateMismatch)
			return
		}
		s.logger.Error("failed to check oauth state", zap.Error(err))
		s.redirectFailure(w, r, reasonServerError)
		return
	}

	if remoteErr := q.Get("error"); remoteErr != "" {
		s.logger.Info("authorization denied by remote", zap.String("error", remoteErr))
		s.redirectFailure(w, r, remoteErr)
		return
	}

	code := q.Get("code")
	if code == "" {
		s.redirectFailure(w, r, oauth.ReasonMissingCode)
		return
	}

	grant, err := s.auth.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Warn("oauth exchange failed", zap.Error(err))
		s.redirectFailure(w, r, oauth.Reason(err))
		return
	}

	if err := s.store.Put(r.Context(), grant.UserID, grant.TeamID, grant.AccessToken); err != nil {
		s.logger.Error("failed to store credential", zap.String("user_id", grant.UserID), zap.Error(err))
		s.redirectFailure(w, r, oauth.ReasonStorageFailed)
		return
	}

	s.resolver.Carrier().Write(w, grant.UserID, s.sessionTTL)
	s.logger.Info("user authorized", zap.String("user_id", grant.UserID), zap.String("team_id", grant.TeamID))
	s.redirectFrontend(w, r, url.Values{"auth_success": {"1"}})
}

// StatusHandler reports whether the request's session maps to a token the
// remote API still accepts. An invalid token clears the session cookie.
func (s *Server) StatusHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := s.resolver.Session(r)
	switch {
	case errors.Is(err, session.ErrNoSession):
		writeJSON(w, http.StatusOK, statusResponse{Authenticated: false})
		return
	case errors.Is(err, credential.ErrNotFound):
		s.resolver.Carrier().Clear(w)
		writeJSON(w, http.StatusOK, statusResponse{Authenticated: false})
		return
	case err != nil:
		s.logger.Error("failed to load session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to check authentication status")
		return
	}

	st := s.introspector.Check(r.Context(), rec.AccessToken)
	if st.State != session.Authenticated {
		s.resolver.Carrier().Clear(w)
		writeJSON(w, http.StatusOK, statusResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Authenticated: true, User: st.User})
}

// LogoutHandler forgets the stored token and clears the session cookie.
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if userID, ok := s.resolver.Carrier().Read(r); ok {
		if _, err := s.store.Delete(r.Context(), userID); err != nil {
			s.logger.Error("failed to delete credential on logout", zap.String("user_id", userID), zap.Error(err))
		}
	}
	s.resolver.Carrier().Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) redirectFailure(w http.ResponseWriter, r *http.Request, reason string) {
	s.redirectFrontend(w, r, url.Values{"auth_error": {"1"}, "reason": {reason}})
}

func (s *Server) redirectFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	target, err := utils.WithQuery(s.frontendURL, params)
	if err != nil {
		s.logger.Error("invalid frontend url", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Invalid frontend URL")
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
