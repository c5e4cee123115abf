package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"collectify-be/internal/entity"
	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/pkg/jwtauth"
	"collectify-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T) *tokenService {
	t.Helper()
	factory := memory.NewRepositoryFactory(memory.NewStore())
	manager := jwtauth.NewManager("token-service-test-secret", "collectify", 15*time.Minute)
	return NewTokenService(factory, manager, time.Hour).(*tokenService)
}

func TestTokenService_AccessTokenRoundTrip(t *testing.T) {
	s := newTestTokenService(t)
	user := &entity.User{Id: uuid.New(), Email: "a@x.com"}

	token, err := s.GenerateAccessToken(user, []string{entity.RoleUser})
	require.NoError(t, err)

	claims, err := s.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.Id.String(), claims.Subject)

	principal, err := s.GetPrincipalFromExpiredToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, principal.Email)

	_, err = s.GetPrincipalFromExpiredToken("garbage")
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
}

func TestTokenService_SaveValidateDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestTokenService(t)
	userId := uuid.New()

	token, err := s.GenerateRefreshToken()
	require.NoError(t, err)
	require.NoError(t, s.SaveRefreshToken(ctx, userId, token, ClientInfo{IpAddress: "127.0.0.1"}))

	ok, err := s.ValidateRefreshToken(ctx, userId, token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = s.ValidateRefreshToken(ctx, uuid.New(), token)
	assert.False(t, ok, "token belongs to another user")

	ok, _ = s.ValidateRefreshToken(ctx, userId, "unknown")
	assert.False(t, ok)

	require.NoError(t, s.DeleteRefreshToken(ctx, userId, token))
	ok, _ = s.ValidateRefreshToken(ctx, userId, token)
	assert.False(t, ok)

	// deleting twice is harmless
	assert.NoError(t, s.DeleteRefreshToken(ctx, userId, token))
}

func TestTokenService_ExpiredRefreshTokenRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestTokenService(t)
	userId := uuid.New()

	token, _ := s.GenerateRefreshToken()
	require.NoError(t, s.SaveRefreshToken(ctx, userId, token, ClientInfo{}))

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	ok, err := s.ValidateRefreshToken(ctx, userId, token)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.RotateRefreshToken(ctx, userId, token, ClientInfo{})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized))

	purged, err := s.PurgeExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestTokenService_Rotate(t *testing.T) {
	ctx := context.Background()
	s := newTestTokenService(t)
	userId := uuid.New()

	old, _ := s.GenerateRefreshToken()
	require.NoError(t, s.SaveRefreshToken(ctx, userId, old, ClientInfo{}))

	fresh, err := s.RotateRefreshToken(ctx, userId, old, ClientInfo{UserAgent: "test"})
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh)

	ok, _ := s.ValidateRefreshToken(ctx, userId, old)
	assert.False(t, ok, "old token must be consumed")
	ok, _ = s.ValidateRefreshToken(ctx, userId, fresh)
	assert.True(t, ok)

	_, err = s.RotateRefreshToken(ctx, userId, old, ClientInfo{})
	assert.True(t, apperror.Is(err, apperror.KindUnauthorized), "replay of a rotated token")
}

func TestTokenService_ConcurrentRotationHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestTokenService(t)
	userId := uuid.New()

	old, _ := s.GenerateRefreshToken()
	require.NoError(t, s.SaveRefreshToken(ctx, userId, old, ClientInfo{}))

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fresh, err := s.RotateRefreshToken(ctx, userId, old, ClientInfo{})
			if err != nil {
				assert.True(t, apperror.Is(err, apperror.KindUnauthorized))
				return
			}
			mu.Lock()
			winners = append(winners, fresh)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	ok, _ := s.ValidateRefreshToken(ctx, userId, winners[0])
	assert.True(t, ok)
}
