package service

import (
	"context"
	"errors"
	"time"

	"collectify-be/internal/entity"
	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/pkg/jwtauth"
	"collectify-be/internal/repository/specification"
	"collectify-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const msgInvalidRefreshToken = "Invalid refresh token"

// ClientInfo is recorded next to every refresh token.
type ClientInfo struct {
	IpAddress string
	UserAgent string
}

type ITokenService interface {
	GenerateAccessToken(user *entity.User, roles []string) (string, error)
	GenerateRefreshToken() (string, error)
	SaveRefreshToken(ctx context.Context, userId uuid.UUID, token string, client ClientInfo) error
	ValidateRefreshToken(ctx context.Context, userId uuid.UUID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, userId uuid.UUID, token string) error
	// RotateRefreshToken swaps oldToken for a new one. Of two concurrent
	// rotations of the same token exactly one succeeds.
	RotateRefreshToken(ctx context.Context, userId uuid.UUID, oldToken string, client ClientInfo) (string, error)
	GetPrincipalFromExpiredToken(token string) (*jwtauth.Claims, error)
	ValidateAccessToken(token string) (*jwtauth.Claims, error)
	PurgeExpiredRefreshTokens(ctx context.Context) (int64, error)
}

type tokenService struct {
	uowFactory unitofwork.RepositoryFactory
	jwt        *jwtauth.Manager
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(uowFactory unitofwork.RepositoryFactory, jwt *jwtauth.Manager, refreshTTL time.Duration) ITokenService {
	return &tokenService{
		uowFactory: uowFactory,
		jwt:        jwt,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *tokenService) GenerateAccessToken(user *entity.User, roles []string) (string, error) {
	token, _, err := s.jwt.GenerateAccessToken(user.Id, user.Email, roles)
	if err != nil {
		return "", apperror.Internal("failed to issue access token", err)
	}
	return token, nil
}

func (s *tokenService) GenerateRefreshToken() (string, error) {
	token, err := jwtauth.GenerateRefreshToken()
	if err != nil {
		return "", apperror.Internal("failed to issue refresh token", err)
	}
	return token, nil
}

func (s *tokenService) newRefreshRecord(userId uuid.UUID, token string, client ClientInfo) *entity.RefreshToken {
	return &entity.RefreshToken{
		Id:        uuid.New(),
		UserId:    userId,
		TokenHash: jwtauth.HashRefreshToken(token),
		ExpiresAt: s.now().Add(s.refreshTTL),
		IpAddress: client.IpAddress,
		UserAgent: client.UserAgent,
	}
}

func (s *tokenService) SaveRefreshToken(ctx context.Context, userId uuid.UUID, token string, client ClientInfo) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.RefreshTokenRepository().Create(ctx, s.newRefreshRecord(userId, token, client)); err != nil {
		return apperror.Internal("failed to save refresh token", err)
	}
	return nil
}

func (s *tokenService) ValidateRefreshToken(ctx context.Context, userId uuid.UUID, token string) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := uow.RefreshTokenRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByTokenHash{Hash: jwtauth.HashRefreshToken(token)},
		specification.ExpiresAfter{Time: s.now()},
	)
	if err != nil {
		return false, apperror.Internal("failed to look up refresh token", err)
	}
	return found != nil, nil
}

func (s *tokenService) DeleteRefreshToken(ctx context.Context, userId uuid.UUID, token string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	_, err := uow.RefreshTokenRepository().DeleteWhere(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByTokenHash{Hash: jwtauth.HashRefreshToken(token)},
	)
	if err != nil {
		return apperror.Internal("failed to delete refresh token", err)
	}
	return nil
}

func (s *tokenService) RotateRefreshToken(ctx context.Context, userId uuid.UUID, oldToken string, client ClientInfo) (string, error) {
	newToken, err := s.GenerateRefreshToken()
	if err != nil {
		return "", err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return "", apperror.Internal("failed to begin transaction", err)
	}
	defer uow.Rollback()

	// The conditional delete is the compare-and-swap: only the caller that
	// actually removes the row may insert a successor.
	deleted, err := uow.RefreshTokenRepository().DeleteWhere(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByTokenHash{Hash: jwtauth.HashRefreshToken(oldToken)},
		specification.ExpiresAfter{Time: s.now()},
	)
	if err != nil {
		return "", apperror.Internal("failed to consume refresh token", err)
	}
	if deleted != 1 {
		return "", apperror.Unauthorized(msgInvalidRefreshToken)
	}

	if err := uow.RefreshTokenRepository().Create(ctx, s.newRefreshRecord(userId, newToken, client)); err != nil {
		return "", apperror.Internal("failed to save refresh token", err)
	}

	if err := uow.Commit(); err != nil {
		return "", apperror.Internal("failed to commit refresh token rotation", err)
	}
	return newToken, nil
}

func (s *tokenService) GetPrincipalFromExpiredToken(token string) (*jwtauth.Claims, error) {
	claims, err := s.jwt.ParseExpired(token)
	if err != nil {
		return nil, apperror.Unauthorized(msgInvalidRefreshToken)
	}
	return claims, nil
}

func (s *tokenService) ValidateAccessToken(token string) (*jwtauth.Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpiredToken) {
			return nil, apperror.Unauthorized("Token has expired")
		}
		return nil, apperror.Unauthorized("Invalid or expired token")
	}
	return claims, nil
}

func (s *tokenService) PurgeExpiredRefreshTokens(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.RefreshTokenRepository().DeleteWhere(ctx, specification.ExpiredAt{Time: s.now()})
	if err != nil {
		return 0, apperror.Internal("failed to purge refresh tokens", err)
	}
	return n, nil
}
