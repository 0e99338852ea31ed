// Package auth implements the Google sign-in flow. Successful logins are
// exchanged for a first-party JWT carrying a "google:" subject; blog and
// document ownership keys off that subject.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "seoblog-backend/internal/shared/auth"
	"seoblog-backend/internal/shared/server/respond"
	"seoblog-backend/internal/shared/telemetry"
)

const (
	userInfoURL   = "https://openidconnect.googleapis.com/v1/userinfo"
	loginStateTTL = 5 * time.Minute
)

// GoogleService drives the OAuth authorization-code flow against Google.
type GoogleService struct {
	conf       *oauth2.Config
	uiRedirect string
	states     *loginStates
}

// NewGoogleService builds the service from client credentials. An empty
// configuration is allowed; the start endpoint reports it at request time so
// local setups without Google credentials still boot.
func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string) *GoogleService {
	return &GoogleService{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect: uiRedirect,
		states:     newLoginStates(loginStateTTL),
	}
}

// RegisterRoutes attaches the login endpoints. They sit outside the auth
// middleware since callers are unauthenticated by definition.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.conf.ClientID != "" && s.conf.ClientSecret != "" && s.conf.RedirectURL != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	s.states.issue(state)
	c.Redirect(http.StatusFound, s.conf.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

func (s *GoogleService) callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.redeem(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		telemetry.Error("auth.exchange_failed", map[string]any{"error": err.Error()})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil || profile.Sub == "" {
		telemetry.Error("auth.userinfo_failed", map[string]any{"error": errString(err)})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	jwt, err := sharedauth.SignJWT(sharedauth.Claims{
		Sub:     "google:" + profile.Sub,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}

	target, err := tokenRedirect(s.uiRedirect, jwt)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}

type googleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *GoogleService) fetchProfile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	resp, err := s.conf.Client(ctx, token).Get(userInfoURL)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return googleProfile{}, err
	}
	return profile, nil
}

// loginStates tracks single-use OAuth state values. Redeeming removes the
// entry, and issue prunes anything already expired so the map stays bounded.
type loginStates struct {
	mu  sync.Mutex
	ttl time.Duration
	exp map[string]time.Time
}

func newLoginStates(ttl time.Duration) *loginStates {
	return &loginStates{ttl: ttl, exp: make(map[string]time.Time)}
}

func (l *loginStates) issue(state string) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, deadline := range l.exp {
		if now.After(deadline) {
			delete(l.exp, k)
		}
	}
	l.exp[state] = now.Add(l.ttl)
}

func (l *loginStates) redeem(state string) bool {
	l.mu.Lock()
	deadline, ok := l.exp[state]
	delete(l.exp, state)
	l.mu.Unlock()
	return ok && time.Now().Before(deadline)
}

func tokenRedirect(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func errString(err error) string {
	if err == nil {
		return "empty profile"
	}
	return err.Error()
}
