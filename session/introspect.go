package session

import (
	"context"
	"net/http"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// State is the verdict of a session check.
type State int

const (
	// Unauthenticated: no token, no remote call made.
	Unauthenticated State = iota
	// Verifying: token present, identity check in flight.
	Verifying
	// Authenticated: the remote identity check succeeded.
	Authenticated
	// Invalid: the remote identity check failed; the session reference
	// should be cleared so later requests short-circuit.
	Invalid
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// User is the public view of an authenticated user.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Team        string `json:"team"`
	TeamID      string `json:"teamId"`
	AvatarURL   string `json:"avatar,omitempty"`
}

// Status is the result of Introspector.Check.
type Status struct {
	State State
	User  *User
	Err   error
}

// Identity is what the remote identity check returns for a token.
type Identity struct {
	UserID string
	User   string
	TeamID string
	Team   string
}

// Profile is the secondary user lookup.
type Profile struct {
	DisplayName string
	AvatarURL   string
}

// IdentityAPI is the remote identity-check capability.
type IdentityAPI interface {
	AuthTest(ctx context.Context, token string) (*Identity, error)
	Profile(ctx context.Context, token, userID string) (*Profile, error)
}

// Introspector validates a token against the remote platform.
type Introspector struct {
	api     IdentityAPI
	logger  *zap.Logger
	observe func(State)
}

func NewIntrospector(api IdentityAPI, logger *zap.Logger) *Introspector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Introspector{api: api, logger: logger}
}

// OnTransition registers a hook called for every state the check passes through.
func (i *Introspector) OnTransition(fn func(State)) {
	i.observe = fn
}

func (i *Introspector) enter(s State) {
	if i.observe != nil {
		i.observe(s)
	}
}

// Check maps token to a session verdict. A failed profile lookup does not
// downgrade a successful identity check: the user is reported with the
// identifiers from the identity check only.
func (i *Introspector) Check(ctx context.Context, token string) Status {
	if token == "" {
		i.enter(Unauthenticated)
		return Status{State: Unauthenticated}
	}

	i.enter(Verifying)
	id, err := i.api.AuthTest(ctx, token)
	if err != nil {
		i.logger.Info("identity check failed", zap.Error(err))
		i.enter(Invalid)
		return Status{State: Invalid, Err: err}
	}

	user := &User{
		ID:          id.UserID,
		DisplayName: id.User,
		Team:        id.Team,
		TeamID:      id.TeamID,
	}
	profile, err := i.api.Profile(ctx, token, id.UserID)
	if err != nil {
		i.logger.Warn("profile lookup failed, returning identifiers only",
			zap.String("user_id", id.UserID),
			zap.Error(err),
		)
	} else {
		if profile.DisplayName != "" {
			user.DisplayName = profile.DisplayName
		}
		user.AvatarURL = profile.AvatarURL
	}

	i.enter(Authenticated)
	return Status{State: Authenticated, User: user}
}

var _ IdentityAPI = &SlackIdentity{}

// SlackIdentity implements IdentityAPI with auth.test and users.info.
type SlackIdentity struct {
	apiURL     string
	httpClient *http.Client
}

// NewSlackIdentity targets apiURL (e.g. "https://slack.com/api/").
func NewSlackIdentity(apiURL string, httpClient *http.Client) *SlackIdentity {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SlackIdentity{apiURL: apiURL, httpClient: httpClient}
}

func (s *SlackIdentity) client(token string) *slack.Client {
	return slack.New(token, slack.OptionAPIURL(s.apiURL), slack.OptionHTTPClient(s.httpClient))
}

func (s *SlackIdentity) AuthTest(ctx context.Context, token string) (*Identity, error) {
	resp, err := s.client(token).AuthTestContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: resp.UserID, User: resp.User, TeamID: resp.TeamID, Team: resp.Team}, nil
}

func (s *SlackIdentity) Profile(ctx context.Context, token, userID string) (*Profile, error) {
	u, err := s.client(token).GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := u.Profile.DisplayName
	if name == "" {
		name = u.RealName
	}
	if name == "" {
		name = u.Name
	}
	avatar := u.Profile.Image192
	if avatar == "" {
		avatar = u.Profile.Image72
	}
	return &Profile{DisplayName: name, AvatarURL: avatar}, nil
}
