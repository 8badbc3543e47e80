package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindful-backend/internal/dto"
)

const (
	StateTTL      = 10 * time.Minute
	githubAPIBase = "https://api.github.com"
	CallbackPath  = "/api/auth/oauth/github/callback"
)

var (
	ErrOAuthDisabled = errors.New("GitHub login is not configured")
	ErrInvalidState  = errors.New("invalid or expired OAuth state")
	ErrOAuthExchange = errors.New("GitHub authorization failed")
)

// GitHubProfile is the part of a GitHub account used to sign in.
type GitHubProfile struct {
	ID        string
	Login     string
	Name      string
	Email     string
	AvatarURL string
}

type OAuthService struct {
	oauth   *oauth2.Config
	states  StateStore
	apiBase string
	enabled bool
}

func NewOAuthService(cfg *config.Config, states StateStore) *OAuthService {
	return &OAuthService{
		oauth: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  strings.TrimRight(cfg.OAuthRedirectBase, "/") + CallbackPath,
			Scopes:       []string{"read:user", "user:email"},
		},
		states:  states,
		apiBase: githubAPIBase,
		enabled: cfg.GitHubOAuthEnabled(),
	}
}

// AuthURL starts a login: it stores a fresh state and returns the GitHub
// authorization URL carrying it.
func (s *OAuthService) AuthURL(ctx context.Context) (*dto.OAuthURLResponse, error) {
	if !s.enabled {
		return nil, ErrOAuthDisabled
	}

	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(raw)

	if err := s.states.Save(ctx, state, StateTTL); err != nil {
		return nil, fmt.Errorf("failed to store state: %w", err)
	}

	return &dto.OAuthURLResponse{
		URL:   s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline),
		State: state,
	}, nil
}

// Exchange consumes the state, trades the code for a token and loads the
// GitHub profile.
func (s *OAuthService) Exchange(ctx context.Context, state, code string) (*GitHubProfile, error) {
	if !s.enabled {
		return nil, ErrOAuthDisabled
	}
	if state == "" || code == "" {
		return nil, ErrInvalidState
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	if !ok {
		return nil, ErrInvalidState
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	client := s.oauth.Client(ctx, token)

	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := s.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: profile has no id", ErrOAuthExchange)
	}

	profile := &GitHubProfile{
		ID:        strconv.FormatInt(user.ID, 10),
		Login:     user.Login,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	}
	if profile.Email == "" {
		profile.Email = s.primaryEmail(ctx, client)
	}
	return profile, nil
}

// primaryEmail returns the verified primary address, or "" when the account
// hides it.
func (s *OAuthService) primaryEmail(ctx context.Context, client *http.Client) string {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := s.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return ""
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	return ""
}

func (s *OAuthService) getJSON(ctx context.Context, client *http.Client, path string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET %s returned %d", ErrOAuthExchange, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrOAuthExchange, path, err)
	}
	return nil
}
