package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Cookie names and paths used by the relay.
const (
	SessionCookieName = "slack_session"
	StateCookieName   = "slack_oauth_state"
	CallbackPath      = "/auth/slack/callback"
)

// Carrier moves a small value between the relay and the browser.
type Carrier interface {
	Read(r *http.Request) (string, bool)
	Write(w http.ResponseWriter, value string, ttl time.Duration)
	Clear(w http.ResponseWriter)
}

var _ Carrier = &CookieCarrier{}

// CookieCarrier stores a value in an httpOnly cookie signed with HMAC-SHA256,
// so a tampered value reads as absent.
type CookieCarrier struct {
	name     string
	path     string
	secret   []byte
	secure   bool
	sameSite http.SameSite
}

// NewCookieCarrier builds a carrier for the named cookie scoped to path.
// SameSite is Lax so the cookie survives the top-level redirect back from
// the authorization server.
func NewCookieCarrier(name, path string, secret []byte, secure bool) *CookieCarrier {
	if path == "" {
		path = "/"
	}
	return &CookieCarrier{
		name:     name,
		path:     path,
		secret:   secret,
		secure:   secure,
		sameSite: http.SameSiteLaxMode,
	}
}

// Read returns the verified value, or false when missing or forged.
func (c *CookieCarrier) Read(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.name)
	if err != nil {
		return "", false
	}
	v, err := decode(ck.Value, c.secret)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// Write sets the signed cookie with the given lifetime.
func (c *CookieCarrier) Write(w http.ResponseWriter, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    encode(value, c.secret),
		Path:     c.path,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

// Clear expires the cookie immediately.
func (c *CookieCarrier) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     c.path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}

func encode(value string, secret []byte) string {
	v := base64.RawURLEncoding.EncodeToString([]byte(value))
	return fmt.Sprintf("%s|%s", v, computeHMAC(v, secret))
}

func decode(raw string, secret []byte) (string, error) {
	value, sig, ok := strings.Cut(raw, "|")
	if !ok {
		return "", errors.New("invalid cookie format")
	}
	if !validateHMAC(value, sig, secret) {
		return "", errors.New("invalid cookie signature")
	}
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Compute HMAC-SHA256 signature of a message using secret
func computeHMAC(message string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(message))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func validateHMAC(message, sig string, secret []byte) bool {
	expected := computeHMAC(message, secret)
	return hmac.Equal([]byte(sig), []byte(expected))
}
