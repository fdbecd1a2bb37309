package oauth

import (
	"errors"
	"fmt"
)

// Reason codes appended to the frontend redirect when the flow fails.
const (
	ReasonStateMismatch   = "state_mismatch"
	ReasonMissingCode     = "missing_code"
	ReasonExchangeFailed  = "exchange_failed"
	ReasonRemoteRejected  = "remote_rejected"
	ReasonInvalidResponse = "invalid_response"
	ReasonStorageFailed   = "storage_failed"
)

var (
	// ErrExchangeFailed covers transport failures talking to the token endpoint.
	ErrExchangeFailed = errors.New("token exchange failed")
	// ErrInvalidResponse means the endpoint answered ok but a required field was missing.
	ErrInvalidResponse = errors.New("invalid token response")
)

// RemoteRejectedError carries the error code the authorization server declared.
type RemoteRejectedError struct {
	Code string
}

func (e *RemoteRejectedError) Error() string {
	return fmt.Sprintf("authorization server rejected exchange: %s", e.Code)
}

// Reason maps an exchange error to its redirect reason code.
func Reason(err error) string {
	var rejected *RemoteRejectedError
	switch {
	case errors.As(err, &rejected):
		return ReasonRemoteRejected
	case errors.Is(err, ErrInvalidResponse):
		return ReasonInvalidResponse
	default:
		return ReasonExchangeFailed
	}
}

// Grant is the normalized outcome of a successful code exchange.
type Grant struct {
	AccessToken string
	UserID      string
	TeamID      string
	TeamName    string
	Scope       string
}

// accessResponse mirrors the oauth.v2.access payload.
type accessResponse struct {
	OK          bool   `json:"ok"`
	Error       string `json:"error"`
	AccessToken string `json:"access_token"`
	AuthedUser  struct {
		ID          string `json:"id"`
		Scope       string `json:"scope"`
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	} `json:"authed_user"`
	Team struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
}
