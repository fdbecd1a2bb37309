package config

import (
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
)

func validEnv() map[string]string {
	return map[string]string{
		"SLACK_CLIENT_ID":     "cid",
		"SLACK_CLIENT_SECRET": "csecret",
		"SLACK_REDIRECT_URI":  "http://localhost:8080/auth/slack/callback",
		"FRONTEND_URL":        "http://localhost:3000",
		"SESSION_SECRET":      "s3cret",
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(env.Options{Environment: validEnv()})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.SessionTTL != 30*24*time.Hour {
		t.Errorf("SessionTTL = %v, want 720h", cfg.SessionTTL)
	}
	if cfg.StateTTL != 10*time.Minute {
		t.Errorf("StateTTL = %v, want 10m", cfg.StateTTL)
	}
	if cfg.HTTPClientTimeout != 10*time.Second {
		t.Errorf("HTTPClientTimeout = %v, want 10s", cfg.HTTPClientTimeout)
	}
	if len(cfg.SlackUserScopes) == 0 {
		t.Error("expected default user scopes")
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
}

func TestParseTrimsScopes(t *testing.T) {
	vars := validEnv()
	vars["SLACK_USER_SCOPES"] = " chat:write, ,users:read "
	cfg, err := Parse(env.Options{Environment: vars})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []string{"chat:write", "users:read"}
	if len(cfg.SlackUserScopes) != len(want) {
		t.Fatalf("SlackUserScopes = %v, want %v", cfg.SlackUserScopes, want)
	}
	for i := range want {
		if cfg.SlackUserScopes[i] != want[i] {
			t.Errorf("SlackUserScopes[%d] = %q, want %q", i, cfg.SlackUserScopes[i], want[i])
		}
	}
}

func TestParseMissingRequired(t *testing.T) {
	vars := validEnv()
	delete(vars, "SLACK_CLIENT_SECRET")
	delete(vars, "SESSION_SECRET")
	_, err := Parse(env.Options{Environment: vars})
	if err == nil {
		t.Fatal("expected error for missing settings")
	}
	for _, key := range []string{"SLACK_CLIENT_SECRET", "SESSION_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestParseBadDuration(t *testing.T) {
	vars := validEnv()
	vars["SESSION_TTL"] = "forever"
	if _, err := Parse(env.Options{Environment: vars}); err == nil {
		t.Fatal("expected parse error for invalid duration")
	}
}
