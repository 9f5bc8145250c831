// Package identity is the authentication client: login, registration,
// logout and the token refresh/verify pair. It owns writes to the session
// manager.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/bincshop/storefront-client/internal/api"
	"github.com/bincshop/storefront-client/internal/session"
)

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	UserType string `json:"user_type,omitempty"`
}

// loginResponse is the token-issuing response of the login endpoint.
type loginResponse struct {
	Access  string        `json:"access"`
	Refresh string        `json:"refresh"`
	User    *session.User `json:"user"`
}

var validate = validator.New()

type Service struct {
	client   *api.Client
	sessions *session.Manager
}

func NewService(client *api.Client, sessions *session.Manager) *Service {
	return &Service{client: client, sessions: sessions}
}

// Login exchanges credentials for a token pair and establishes the session
// in the storage scope selected by remember.
func (s *Service) Login(ctx context.Context, creds Credentials, remember bool) (session.Session, error) {
	if err := validate.Struct(creds); err != nil {
		return session.Session{}, fmt.Errorf("invalid credentials: %w", err)
	}

	var resp loginResponse
	err := s.client.Post(ctx, "/auth/login/", creds, &resp, api.WithoutAuth())
	if err != nil {
		return session.Session{}, err
	}
	if resp.Access == "" || resp.Refresh == "" {
		return session.Session{}, errors.New("login response missing tokens")
	}

	sess := session.Session{
		User:         resp.User,
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
	}
	if err := s.sessions.Establish(sess, remember); err != nil {
		return session.Session{}, fmt.Errorf("persist session: %w", err)
	}

	log.Info().Bool("remember", remember).Msg("session established")
	return sess, nil
}

// Register creates an account. The server issues no tokens at registration:
// the new user logs in separately, so no session is established here.
func (s *Service) Register(ctx context.Context, reg Registration) (*session.User, error) {
	if err := validate.Struct(reg); err != nil {
		return nil, fmt.Errorf("invalid registration: %w", err)
	}

	var resp struct {
		User *session.User `json:"user"`
	}
	err := s.client.Post(ctx, "/auth/register/", reg, &resp, api.WithoutAuth())
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout tells the server to drop the session, then clears local state. The
// local clear happens regardless of the server's answer.
func (s *Service) Logout(ctx context.Context) error {
	err := s.client.Post(ctx, "/auth/logout/", nil, nil)
	if err != nil {
		log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
	}
	s.sessions.Clear()
	return err
}

// RefreshAccess exchanges the refresh token for a new access token. It
// satisfies the API client's SessionRefresher, so a 401 triggers it
// automatically.
func (s *Service) RefreshAccess(ctx context.Context) (string, error) {
	refresh := s.sessions.RefreshToken()
	if refresh == "" {
		return "", errors.New("no refresh token available")
	}

	var resp struct {
		Access string `json:"access"`
	}
	err := s.client.Post(ctx, "/auth/token/refresh/", map[string]string{"refresh": refresh}, &resp, api.WithoutAuth())
	if err != nil {
		return "", err
	}
	if resp.Access == "" {
		return "", errors.New("refresh response missing access token")
	}

	if err := s.sessions.UpdateAccessToken(resp.Access); err != nil {
		return "", fmt.Errorf("persist refreshed token: %w", err)
	}
	return resp.Access, nil
}

// Clear drops the local session. Part of the SessionRefresher contract.
func (s *Service) Clear() {
	s.sessions.Clear()
}

// Verify asks the server whether the held access token is valid. Used once
// at startup so persisted local data is never trusted without confirmation.
func (s *Service) Verify(ctx context.Context) error {
	token := s.sessions.AccessToken()
	if token == "" {
		return errors.New("no session to verify")
	}
	return s.client.Post(ctx, "/auth/token/verify/", map[string]string{"token": token}, nil, api.WithoutAuth())
}
