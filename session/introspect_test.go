package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeIdentity struct {
	authCalls  int
	identity   *Identity
	authErr    error
	profile    *Profile
	profileErr error
}

func (f *fakeIdentity) AuthTest(ctx context.Context, token string) (*Identity, error) {
	f.authCalls++
	return f.identity, f.authErr
}

func (f *fakeIdentity) Profile(ctx context.Context, token, userID string) (*Profile, error) {
	return f.profile, f.profileErr
}

func TestCheckNoToken(t *testing.T) {
	api := &fakeIdentity{}
	st := NewIntrospector(api, nil).Check(context.Background(), "")
	if st.State != Unauthenticated {
		t.Errorf("State = %v, want unauthenticated", st.State)
	}
	if api.authCalls != 0 {
		t.Errorf("remote identity check called %d times, want 0", api.authCalls)
	}
}

func TestCheckAuthenticated(t *testing.T) {
	api := &fakeIdentity{
		identity: &Identity{UserID: "U1", User: "alice", TeamID: "T1", Team: "Acme"},
		profile:  &Profile{DisplayName: "Alice", AvatarURL: "https://img/a.png"},
	}
	in := NewIntrospector(api, nil)
	var states []State
	in.OnTransition(func(s State) { states = append(states, s) })

	st := in.Check(context.Background(), "xoxp")
	if st.State != Authenticated {
		t.Fatalf("State = %v, want authenticated", st.State)
	}
	want := User{ID: "U1", DisplayName: "Alice", Team: "Acme", TeamID: "T1", AvatarURL: "https://img/a.png"}
	if *st.User != want {
		t.Errorf("User = %+v, want %+v", *st.User, want)
	}
	if len(states) != 2 || states[0] != Verifying || states[1] != Authenticated {
		t.Errorf("transitions = %v", states)
	}
}

func TestCheckProfileFailureDegrades(t *testing.T) {
	api := &fakeIdentity{
		identity:   &Identity{UserID: "U1", User: "alice", TeamID: "T1", Team: "Acme"},
		profileErr: errors.New("ratelimited"),
	}
	st := NewIntrospector(api, nil).Check(context.Background(), "xoxp")
	if st.State != Authenticated {
		t.Fatalf("State = %v, want authenticated", st.State)
	}
	if st.User.DisplayName != "alice" || st.User.AvatarURL != "" {
		t.Errorf("User = %+v, want identifier-only info", st.User)
	}
}

func TestCheckInvalid(t *testing.T) {
	api := &fakeIdentity{authErr: errors.New("invalid_auth")}
	st := NewIntrospector(api, nil).Check(context.Background(), "xoxp-revoked")
	if st.State != Invalid || st.Err == nil {
		t.Errorf("Status = %+v, want invalid with error", st)
	}
	if st.User != nil {
		t.Error("invalid status must not carry a user")
	}
}

func TestStateString(t *testing.T) {
	if Authenticated.String() != "authenticated" || State(42).String() != "unknown" {
		t.Error("unexpected State.String output")
	}
}

func slackServer(t *testing.T, authBody, userBody string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth.test":
			fmt.Fprint(w, authBody)
		case "/users.info":
			fmt.Fprint(w, userBody)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSlackIdentity(t *testing.T) {
	srv := slackServer(t,
		`{"ok":true,"url":"https://acme.slack.com/","team":"Acme","user":"alice","team_id":"T1","user_id":"U1"}`,
		`{"ok":true,"user":{"id":"U1","name":"alice","real_name":"Alice A","profile":{"display_name":"","real_name":"Alice A","image_72":"https://img/72.png","image_192":"https://img/192.png"}}}`,
	)
	api := NewSlackIdentity(srv.URL+"/", srv.Client())

	id, err := api.AuthTest(context.Background(), "xoxp")
	if err != nil {
		t.Fatalf("AuthTest: %v", err)
	}
	if id.UserID != "U1" || id.TeamID != "T1" || id.Team != "Acme" {
		t.Errorf("unexpected identity %+v", id)
	}

	p, err := api.Profile(context.Background(), "xoxp", "U1")
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p.DisplayName != "Alice A" || p.AvatarURL != "https://img/192.png" {
		t.Errorf("unexpected profile %+v", p)
	}
}

func TestSlackIdentityRejected(t *testing.T) {
	srv := slackServer(t, `{"ok":false,"error":"invalid_auth"}`, `{"ok":false,"error":"invalid_auth"}`)
	api := NewSlackIdentity(srv.URL+"/", srv.Client())
	st := NewIntrospector(api, nil).Check(context.Background(), "xoxp-bad")
	if st.State != Invalid {
		t.Fatalf("State = %v, want invalid", st.State)
	}
	if st.Err == nil || st.Err.Error() != "invalid_auth" {
		t.Errorf("Err = %v, want invalid_auth", st.Err)
	}
}
