package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pulseguard-risk-server/internal/userstore"
)

// ErrInvalidCredentials is returned when a login attempt fails. The same
// error covers unknown usernames and wrong passwords so responses don't
// reveal which accounts exist.
var ErrInvalidCredentials = fmt.Errorf("invalid username or password")

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = fmt.Errorf("username already registered")

// Service implements clinician registration and login on top of a user store.
type Service struct {
	users  userstore.Store
	tokens *TokenIssuer
	log    *logrus.Logger
}

// NewService creates an authentication service.
func NewService(users userstore.Store, tokens *TokenIssuer, logger *logrus.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		log:    logger,
	}
}

// Register creates a new clinician account and returns it.
func (s *Service) Register(ctx context.Context, username, password string) (*userstore.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return nil, fmt.Errorf("username must be at least 3 characters")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	user := &userstore.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         userstore.RoleClinician,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	return user, nil
}

// Login verifies credentials and returns a signed access token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *userstore.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issuing token: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User logged in")

	return token, user, nil
}

// UserFromToken resolves the account behind a verified token's claims.
func (s *Service) UserFromToken(ctx context.Context, claims *Claims) (*userstore.User, error) {
	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("account no longer exists")
	}
	return user, nil
}

// Tokens exposes the token issuer for middleware wiring.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}
