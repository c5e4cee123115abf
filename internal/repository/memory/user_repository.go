package memory

import (
	"context"
	"slices"

	"collectify-be/internal/entity"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
	uow   *unitOfWork
}

func NewUserRepository(store *Store) contract.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return contract.ErrDuplicate
		}
	}
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	now := r.store.now()
	user.CreatedAt, user.UpdatedAt = now, now
	remember(r.uow.journal(), r.store.users, user.Id)
	r.store.users[user.Id] = *user
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, existing := range r.store.users {
		if id != user.Id && existing.Email == user.Email {
			return contract.ErrDuplicate
		}
	}
	user.UpdatedAt = r.store.now()
	remember(r.uow.journal(), r.store.users, user.Id)
	r.store.users[user.Id] = *user
	return nil
}

func (r *userRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	found, err := r.FindAll(ctx, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *userRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return query(values(r.store.users), specs)
}

func (r *userRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := r.FindAll(ctx, specs...)
	return int64(len(found)), err
}

func (r *userRepository) AddRole(ctx context.Context, userId uuid.UUID, role string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current := r.store.roles[userId]
	if slices.Contains(current, role) {
		return nil
	}
	remember(r.uow.journal(), r.store.roles, userId)
	roles := append(slices.Clone(current), role)
	slices.Sort(roles)
	r.store.roles[userId] = roles
	return nil
}

func (r *userRepository) GetRoles(ctx context.Context, userId uuid.UUID) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return slices.Clone(r.store.roles[userId]), nil
}

type refreshTokenRepository struct {
	store *Store
	uow   *unitOfWork
}

func NewRefreshTokenRepository(store *Store) contract.RefreshTokenRepository {
	return &refreshTokenRepository{store: store}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *entity.RefreshToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.refreshTokens {
		if existing.TokenHash == token.TokenHash {
			return contract.ErrDuplicate
		}
	}
	if token.Id == uuid.Nil {
		token.Id = uuid.New()
	}
	token.CreatedAt = r.store.now()
	remember(r.uow.journal(), r.store.refreshTokens, token.Id)
	r.store.refreshTokens[token.Id] = *token
	return nil
}

func (r *refreshTokenRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefreshToken, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	found, err := query(values(r.store.refreshTokens), specs)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

// DeleteWhere matches and deletes under one write lock, which makes a
// conditional delete an atomic compare-and-delete.
func (r *refreshTokenRepository) DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	found, err := query(values(r.store.refreshTokens), specs)
	if err != nil {
		return 0, err
	}
	for _, t := range found {
		remember(r.uow.journal(), r.store.refreshTokens, t.Id)
		delete(r.store.refreshTokens, t.Id)
	}
	return int64(len(found)), nil
}
