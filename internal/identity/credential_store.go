// Package identity owns user credentials: password policy, hashing and role
// assignment. Services talk to it instead of touching password hashes.
package identity

import (
	"context"
	"errors"
	"fmt"

	"collectify-be/internal/entity"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"
	"collectify-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrDuplicateEmail = errors.New("email already in use")

type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	// Create validates the password, hashes it and stores the user with the
	// default role. Policy failures come back as *ValidationError.
	Create(ctx context.Context, user *entity.User, password string) error
	CheckPassword(user *entity.User, password string) bool
	AddRole(ctx context.Context, userId uuid.UUID, role string) error
	GetRoles(ctx context.Context, userId uuid.UUID) ([]string, error)
}

type credentialStore struct {
	uowFactory unitofwork.RepositoryFactory
	policy     PasswordPolicy
	hashCost   int
}

func NewCredentialStore(uowFactory unitofwork.RepositoryFactory, policy PasswordPolicy, hashCost int) CredentialStore {
	if hashCost < bcrypt.MinCost || hashCost > bcrypt.MaxCost {
		hashCost = bcrypt.DefaultCost
	}
	return &credentialStore{
		uowFactory: uowFactory,
		policy:     policy,
		hashCost:   hashCost,
	}
}

func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
}

func (s *credentialStore) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (s *credentialStore) Create(ctx context.Context, user *entity.User, password string) error {
	if err := s.policy.Validate(password); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return ErrDuplicateEmail
		}
		return err
	}
	if err := uow.UserRepository().AddRole(ctx, user.Id, entity.RoleUser); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *credentialStore) CheckPassword(user *entity.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (s *credentialStore) AddRole(ctx context.Context, userId uuid.UUID, role string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().AddRole(ctx, userId, role)
}

func (s *credentialStore) GetRoles(ctx context.Context, userId uuid.UUID) ([]string, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.UserRepository().GetRoles(ctx, userId)
}
