package auth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseguard-risk-server/internal/userstore"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "auth-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	users, err := userstore.NewSQLiteStore(filepath.Join(tmpDir, "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { users.Close() })

	tokens, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	return NewService(users, tokens, logger)
}

func TestHashPassword_Deterministic(t *testing.T) {
	hash := HashPassword("secret123")

	assert.Len(t, hash, 64, "SHA-256 hex digest is 64 characters")
	assert.Equal(t, hash, HashPassword("secret123"))
	assert.NotEqual(t, hash, HashPassword("secret124"))

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestService_RegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "dr.huang", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "dr.huang", user.Username)
	assert.Equal(t, userstore.RoleClinician, user.Role)
	assert.NotEqual(t, "secret123", user.PasswordHash, "Password must not be stored raw")

	token, loggedIn, err := svc.Login(ctx, "dr.huang", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := svc.Tokens().Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "dr.huang", claims.Username)

	resolved, err := svc.UserFromToken(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dr.huang", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dr.huang", "other-password")
	assert.True(t, errors.Is(err, ErrUsernameTaken))
}

func TestService_Register_WeakInputs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ab", "secret123")
	assert.Error(t, err, "Short usernames are rejected")

	_, err = svc.Register(ctx, "dr.huang", "12345")
	assert.Error(t, err, "Short passwords are rejected")
}

func TestService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dr.huang", "secret123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "dr.huang", "wrong-password")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	// Unknown usernames produce the same error as wrong passwords
	_, _, err = svc.Login(ctx, "nobody", "secret123")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	tokens, err := NewTokenIssuer("test-secret", time.Millisecond)
	require.NoError(t, err)

	signed, err := tokens.Issue(&userstore.User{ID: "u1", Username: "dr.huang", Role: userstore.RoleClinician})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = tokens.Verify(signed)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsForeignSecret(t *testing.T) {
	issuer, err := NewTokenIssuer("secret-a", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenIssuer("secret-b", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Issue(&userstore.User{ID: "u1", Username: "dr.huang", Role: userstore.RoleClinician})
	require.NoError(t, err)

	_, err = verifier.Verify(signed)
	assert.Error(t, err)
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}
