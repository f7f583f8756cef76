package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-auction/internal/config"
	"github.com/spec-kit/ticket-auction/internal/domain"
	"github.com/spec-kit/ticket-auction/internal/repository"
)

func newAuth() *AuthService {
	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 5, BcryptCost: 4}
	return NewAuthService(cfg, repository.NewMemoryAccountRepository())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()

	account, token, _, err := svc.Register(ctx, "Alice@Example.com", "Alice", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, account.Address)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.Address, claims.Address)

	logged, _, _, err := svc.Login(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, account.Address, logged.Address)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "a@b.c", "A", "pw")
	require.NoError(t, err)
	_, _, _, err = svc.Register(ctx, "a@b.c", "A2", "pw2")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc := newAuth()
	ctx := context.Background()

	_, _, _, err := svc.Login(ctx, "ghost@b.c", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, _, err = svc.Register(ctx, "a@b.c", "A", "pw")
	require.NoError(t, err)
	_, _, _, err = svc.Login(ctx, "a@b.c", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}
