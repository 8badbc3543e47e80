package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
)

// fakeGitHub serves the token endpoint and the two API calls the login uses.
func fakeGitHub(t *testing.T, userBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad_verification_code"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"gh-token","token_type":"bearer","scope":"read:user"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(userBody))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"email":"old@example.com","primary":false,"verified":true},
			{"email":"main@example.com","primary":true,"verified":true}
		]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestOAuth(srv *httptest.Server) *OAuthService {
	s := NewOAuthService(&config.Config{
		GitHubClientID:     "client",
		GitHubClientSecret: "secret",
		OAuthRedirectBase:  "http://localhost:8080/",
	}, NewMemoryStateStore())
	s.oauth.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	s.apiBase = srv.URL
	return s
}

func TestAuthURL(t *testing.T) {
	srv := fakeGitHub(t, `{}`)
	s := newTestOAuth(srv)

	resp, err := s.AuthURL(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(resp.URL)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("state") != resp.State || resp.State == "" {
		t.Errorf("state = %q, url state = %q", resp.State, q.Get("state"))
	}
	if q.Get("client_id") != "client" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("redirect_uri") != "http://localhost:8080"+CallbackPath {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}
}

func TestExchange(t *testing.T) {
	srv := fakeGitHub(t, `{"id":4242,"login":"octo","name":"Octo Cat","email":"","avatar_url":"https://a/octo.png"}`)
	s := newTestOAuth(srv)
	ctx := context.Background()

	start, err := s.AuthURL(ctx)
	if err != nil {
		t.Fatal(err)
	}

	profile, err := s.Exchange(ctx, start.State, "good-code")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	want := GitHubProfile{ID: "4242", Login: "octo", Name: "Octo Cat", Email: "main@example.com", AvatarURL: "https://a/octo.png"}
	if *profile != want {
		t.Errorf("profile = %+v, want %+v", *profile, want)
	}

	if _, err := s.Exchange(ctx, start.State, "good-code"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("replayed state error = %v, want ErrInvalidState", err)
	}
}

func TestExchangeFailures(t *testing.T) {
	srv := fakeGitHub(t, `{"id":1,"login":"octo"}`)
	ctx := context.Background()

	tests := []struct {
		name  string
		state func(s *OAuthService) string
		code  string
		want  error
	}{
		{"unknown state", func(*OAuthService) string { return "forged" }, "good-code", ErrInvalidState},
		{"empty code", func(s *OAuthService) string { r, _ := s.AuthURL(ctx); return r.State }, "", ErrInvalidState},
		{"rejected code", func(s *OAuthService) string { r, _ := s.AuthURL(ctx); return r.State }, "bad-code", ErrOAuthExchange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestOAuth(srv)
			if _, err := s.Exchange(ctx, tt.state(s), tt.code); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestOAuthDisabled(t *testing.T) {
	s := NewOAuthService(&config.Config{}, NewMemoryStateStore())
	if _, err := s.AuthURL(context.Background()); !errors.Is(err, ErrOAuthDisabled) {
		t.Errorf("AuthURL() error = %v", err)
	}
	if _, err := s.Exchange(context.Background(), "s", "c"); !errors.Is(err, ErrOAuthDisabled) {
		t.Errorf("Exchange() error = %v", err)
	}
}
