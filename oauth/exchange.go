package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Config describes the Slack app used for the authorization-code grant.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string
	// TokenURL is the oauth.v2.access endpoint.
	TokenURL   string
	UserScopes []string
	BotScopes  []string
}

// Exchanger builds authorize URLs and trades authorization codes for tokens.
type Exchanger struct {
	oauth      oauth2.Config
	userScopes []string
	botScopes  []string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewExchanger returns an Exchanger. A nil client gets a 10s timeout client.
func NewExchanger(cfg Config, httpClient *http.Client, logger *zap.Logger) *Exchanger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exchanger{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userScopes: cfg.UserScopes,
		botScopes:  cfg.BotScopes,
		httpClient: httpClient,
		logger:     logger,
	}
}

// AuthorizeURL returns the remote authorize URL carrying state.
// Slack expects comma-separated scopes, so they bypass oauth2.Config.Scopes.
func (e *Exchanger) AuthorizeURL(state string) string {
	var opts []oauth2.AuthCodeOption
	if len(e.botScopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(e.botScopes, ",")))
	}
	if len(e.userScopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("user_scope", strings.Join(e.userScopes, ",")))
	}
	return e.oauth.AuthCodeURL(state, opts...)
}

// Exchange trades code for a user token. It never returns a partial Grant:
// transport problems yield ErrExchangeFailed, a remote error code yields
// *RemoteRejectedError and a reply missing token, user or team yields
// ErrInvalidResponse.
func (e *Exchanger) Exchange(ctx context.Context, code string) (*Grant, error) {
	data := url.Values{
		"client_id":     {e.oauth.ClientID},
		"client_secret": {e.oauth.ClientSecret},
		"code":          {code},
		"redirect_uri":  {e.oauth.RedirectURL},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.oauth.Endpoint.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrExchangeFailed, err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status=%d", ErrExchangeFailed, resp.StatusCode)
	}

	var result accessResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidResponse, err)
	}
	if !result.OK {
		code := result.Error
		if code == "" {
			code = "unknown_error"
		}
		return nil, &RemoteRejectedError{Code: code}
	}

	grant := &Grant{
		AccessToken: result.AuthedUser.AccessToken,
		UserID:      result.AuthedUser.ID,
		TeamID:      result.Team.ID,
		TeamName:    result.Team.Name,
		Scope:       result.AuthedUser.Scope,
	}
	switch {
	case grant.AccessToken == "":
		return nil, fmt.Errorf("%w: missing user access token", ErrInvalidResponse)
	case grant.UserID == "":
		return nil, fmt.Errorf("%w: missing authed user id", ErrInvalidResponse)
	case grant.TeamID == "":
		return nil, fmt.Errorf("%w: missing team id", ErrInvalidResponse)
	}

	e.logger.Debug("exchanged authorization code",
		zap.String("user_id", grant.UserID),
		zap.String("team_id", grant.TeamID),
	)
	return grant, nil
}
