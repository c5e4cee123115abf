package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"collectify-be/internal/dto"
	"collectify-be/internal/entity"
	"collectify-be/internal/identity"
	"collectify-be/internal/pkg/apperror"
	"collectify-be/internal/pkg/jwtauth"
	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/pkg/storage"
	"collectify-be/internal/pkg/tokenstore"
	"collectify-be/internal/repository/unitofwork"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	msgDuplicateEmail   = "There is already an user with this email"
	msgUserNotFound     = "User not found"
	msgWrongPassword    = "Wrong password"
	msgTokenUserMissing = "User from token not found!"
)

type IAccountService interface {
	Register(ctx context.Context, req *dto.CredentialsRequest) error
	Login(ctx context.Context, req *dto.CredentialsRequest, client ClientInfo) (*dto.LoginTokens, error)
	Refresh(ctx context.Context, req *dto.LoginTokens, client ClientInfo) (*dto.LoginTokens, error)
	Logout(ctx context.Context, userId uuid.UUID, refreshToken string, accessClaims *jwtauth.Claims) error
	GetUserProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	EditUserProfile(ctx context.Context, userId uuid.UUID, req *dto.EditProfileRequest, avatar *dto.AvatarUpload) (*dto.UserProfileResponse, error)
}

type accountService struct {
	credentials    identity.CredentialStore
	tokenService   ITokenService
	denylist       tokenstore.Denylist
	avatars        storage.AvatarStorage
	uowFactory     unitofwork.RepositoryFactory
	avatarMaxBytes int64
	log            logger.ILogger
}

func NewAccountService(
	credentials identity.CredentialStore,
	tokenService ITokenService,
	denylist tokenstore.Denylist,
	avatars storage.AvatarStorage,
	uowFactory unitofwork.RepositoryFactory,
	avatarMaxBytes int64,
	log logger.ILogger,
) IAccountService {
	return &accountService{
		credentials:    credentials,
		tokenService:   tokenService,
		denylist:       denylist,
		avatars:        avatars,
		uowFactory:     uowFactory,
		avatarMaxBytes: avatarMaxBytes,
		log:            log,
	}
}

func (s *accountService) Register(ctx context.Context, req *dto.CredentialsRequest) error {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return apperror.BadRequest("Email and password are required")
	}
	email := strings.TrimSpace(req.Email)

	existing, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		return apperror.Internal("failed to look up user", err)
	}
	if existing != nil {
		return apperror.BadRequest(msgDuplicateEmail)
	}

	user := &entity.User{Id: uuid.New(), Email: email}
	if err := s.credentials.Create(ctx, user, req.Password); err != nil {
		var verr *identity.ValidationError
		switch {
		case errors.As(err, &verr):
			return apperror.BadRequest("Failed to create user: " + strings.Join(verr.Messages, " "))
		case errors.Is(err, identity.ErrDuplicateEmail):
			return apperror.BadRequest(msgDuplicateEmail)
		default:
			return apperror.Internal("failed to create user", err)
		}
	}

	s.log.Info("AccountService", "User registered", map[string]interface{}{"user_id": user.Id.String()})
	return nil
}

func (s *accountService) Login(ctx context.Context, req *dto.CredentialsRequest, client ClientInfo) (*dto.LoginTokens, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, apperror.BadRequest("Email and password are required")
	}

	user, err := s.credentials.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	if !s.credentials.CheckPassword(user, req.Password) {
		return nil, apperror.Unauthorized(msgWrongPassword)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokenService.SaveRefreshToken(ctx, user.Id, refreshToken, client); err != nil {
		return nil, err
	}

	accessToken, err := s.issueAccessToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *accountService) issueAccessToken(ctx context.Context, user *entity.User) (string, error) {
	roles, err := s.credentials.GetRoles(ctx, user.Id)
	if err != nil {
		return "", apperror.Internal("failed to load roles", err)
	}
	return s.tokenService.GenerateAccessToken(user, roles)
}

// Refresh accepts an access token that may already be expired, identifies the
// user from it and rotates the refresh token.
func (s *accountService) Refresh(ctx context.Context, req *dto.LoginTokens, client ClientInfo) (*dto.LoginTokens, error) {
	if req == nil || req.AccessToken == "" || req.RefreshToken == "" {
		return nil, apperror.BadRequest("Access token and refresh token are required")
	}

	claims, err := s.tokenService.GetPrincipalFromExpiredToken(req.AccessToken)
	if err != nil {
		return nil, err
	}
	userId, err := jwtauth.UserIDFromClaims(claims)
	if err != nil {
		return nil, apperror.Unauthorized(msgInvalidRefreshToken)
	}

	user, err := s.credentials.FindById(ctx, userId)
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.NotFound(msgTokenUserMissing)
	}

	refreshToken, err := s.tokenService.RotateRefreshToken(ctx, user.Id, req.RefreshToken, client)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.issueAccessToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *accountService) Logout(ctx context.Context, userId uuid.UUID, refreshToken string, accessClaims *jwtauth.Claims) error {
	if refreshToken != "" {
		if err := s.tokenService.DeleteRefreshToken(ctx, userId, refreshToken); err != nil {
			return err
		}
	}

	if accessClaims != nil && accessClaims.ID != "" && accessClaims.ExpiresAt != nil {
		if err := s.denylist.Revoke(ctx, accessClaims.ID, accessClaims.ExpiresAt.Time); err != nil {
			return apperror.Internal("failed to revoke access token", err)
		}
	}

	s.log.Info("AccountService", "User logged out", map[string]interface{}{"user_id": userId.String()})
	return nil
}

func (s *accountService) GetUserProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := s.credentials.FindById(ctx, userId)
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	return toProfile(user), nil
}

func (s *accountService) EditUserProfile(ctx context.Context, userId uuid.UUID, req *dto.EditProfileRequest, avatar *dto.AvatarUpload) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := s.credentials.FindById(ctx, userId)
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}
	if user == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}

	if req != nil && req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		user.Nickname = &nickname
	}

	if avatar != nil {
		path, err := s.storeAvatar(ctx, userId, avatar)
		if err != nil {
			return nil, err
		}
		user.AvatarPath = &path
	}

	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, apperror.Internal("failed to update profile", err)
	}

	return toProfile(user), nil
}

func (s *accountService) storeAvatar(ctx context.Context, userId uuid.UUID, avatar *dto.AvatarUpload) (string, error) {
	size := avatar.Size
	if int64(len(avatar.Data)) > size {
		size = int64(len(avatar.Data))
	}
	if size == 0 {
		return "", apperror.BadRequest("Avatar file is empty")
	}
	if s.avatarMaxBytes > 0 && size > s.avatarMaxBytes {
		return "", apperror.BadRequest(fmt.Sprintf("Avatar must not exceed %d bytes", s.avatarMaxBytes))
	}

	mtype := mimetype.Detect(avatar.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", apperror.BadRequest("Uploaded file is not an image")
	}

	path, err := s.avatars.Save(ctx, storage.AvatarKey(userId, mtype.Extension()), avatar.Data, mtype.String())
	if err != nil {
		return "", apperror.Internal("failed to store avatar", err)
	}
	return path, nil
}

func toProfile(user *entity.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		Id:         user.Id,
		Email:      user.Email,
		Nickname:   user.Nickname,
		AvatarPath: user.AvatarPath,
	}
}
