package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestExchanger(tokenURL string) *Exchanger {
	return NewExchanger(Config{
		ClientID:     "cid",
		ClientSecret: "csecret",
		RedirectURI:  "https://relay.example/auth/slack/callback",
		AuthorizeURL: "https://slack.example/oauth/v2/authorize",
		TokenURL:     tokenURL,
		UserScopes:   []string{"chat:write", "users:read"},
		BotScopes:    []string{"chat:write"},
	}, nil, nil)
}

func TestAuthorizeURL(t *testing.T) {
	e := newTestExchanger("https://slack.example/api/oauth.v2.access")
	raw := e.AuthorizeURL("nonce-123")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	if u.Host != "slack.example" || u.Path != "/oauth/v2/authorize" {
		t.Errorf("unexpected authorize endpoint: %s", raw)
	}
	q := u.Query()
	checks := map[string]string{
		"client_id":     "cid",
		"redirect_uri":  "https://relay.example/auth/slack/callback",
		"state":         "nonce-123",
		"response_type": "code",
		"scope":         "chat:write",
		"user_scope":    "chat:write,users:read",
	}
	for k, want := range checks {
		if got := q.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
}

func tokenServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q, want form encoding", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if r.Form.Get("code") != "good-code" && r.Form.Get("code") != "bad-code" {
			t.Errorf("unexpected code %q", r.Form.Get("code"))
		}
		if r.Form.Get("client_secret") != "csecret" {
			t.Errorf("client_secret not forwarded")
		}
		if r.Form.Get("redirect_uri") != "https://relay.example/auth/slack/callback" {
			t.Errorf("redirect_uri = %q", r.Form.Get("redirect_uri"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExchangeSuccess(t *testing.T) {
	srv := tokenServer(t, http.StatusOK, `{
		"ok": true,
		"access_token": "xoxb-bot",
		"team": {"id": "T1", "name": "Acme"},
		"authed_user": {"id": "U1", "scope": "chat:write", "access_token": "xoxp-user", "token_type": "user"}
	}`)
	g, err := newTestExchanger(srv.URL).Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if g.AccessToken != "xoxp-user" || g.UserID != "U1" || g.TeamID != "T1" || g.TeamName != "Acme" {
		t.Errorf("unexpected grant: %+v", g)
	}
}

func TestExchangeFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantReason string
	}{
		{"remote rejected", http.StatusOK, `{"ok": false, "error": "invalid_code"}`, ReasonRemoteRejected},
		{"missing token", http.StatusOK, `{"ok": true, "team": {"id": "T1"}, "authed_user": {"id": "U1"}}`, ReasonInvalidResponse},
		{"missing user", http.StatusOK, `{"ok": true, "team": {"id": "T1"}, "authed_user": {"access_token": "xoxp"}}`, ReasonInvalidResponse},
		{"missing team", http.StatusOK, `{"ok": true, "authed_user": {"id": "U1", "access_token": "xoxp"}}`, ReasonInvalidResponse},
		{"not json", http.StatusOK, `<html>`, ReasonInvalidResponse},
		{"server error", http.StatusBadGateway, `oops`, ReasonExchangeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := tokenServer(t, tt.status, tt.body)
			g, err := newTestExchanger(srv.URL).Exchange(context.Background(), "bad-code")
			if err == nil {
				t.Fatalf("expected error, got grant %+v", g)
			}
			if g != nil {
				t.Errorf("partial grant returned alongside error: %+v", g)
			}
			if got := Reason(err); got != tt.wantReason {
				t.Errorf("Reason(%v) = %q, want %q", err, got, tt.wantReason)
			}
		})
	}
}

func TestExchangeRemoteCode(t *testing.T) {
	srv := tokenServer(t, http.StatusOK, `{"ok": false, "error": "code_already_used"}`)
	_, err := newTestExchanger(srv.URL).Exchange(context.Background(), "bad-code")
	var rejected *RemoteRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("error = %v, want *RemoteRejectedError", err)
	}
	if rejected.Code != "code_already_used" {
		t.Errorf("Code = %q, want code_already_used", rejected.Code)
	}
}

func TestExchangeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := newTestExchanger(addr).Exchange(context.Background(), "good-code")
	if !errors.Is(err, ErrExchangeFailed) {
		t.Fatalf("error = %v, want ErrExchangeFailed", err)
	}
}
