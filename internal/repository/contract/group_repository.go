package contract

import (
	"context"

	"collectify-be/internal/entity"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GroupRepository interface {
	Create(ctx context.Context, group *entity.Group) error
	Update(ctx context.Context, group *entity.Group) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Group, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Group, error)
}

type GroupMemberRepository interface {
	// Create returns ErrDuplicate when the pair already exists.
	Create(ctx context.Context, member *entity.GroupMember) error
	Delete(ctx context.Context, memberId, groupId uuid.UUID) (int64, error)
	DeleteAllByGroupId(ctx context.Context, groupId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GroupMember, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
