package contract

import (
	"context"

	"collectify-be/internal/entity"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Roles
	AddRole(ctx context.Context, userId uuid.UUID, role string) error
	GetRoles(ctx context.Context, userId uuid.UUID) ([]string, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *entity.RefreshToken) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefreshToken, error)
	// DeleteWhere removes every token matching all specs and reports how many went away.
	DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error)
}
