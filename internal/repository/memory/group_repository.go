package memory

import (
	"context"

	"collectify-be/internal/entity"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type groupRepository struct {
	store *Store
	uow   *unitOfWork
}

func NewGroupRepository(store *Store) contract.GroupRepository {
	return &groupRepository{store: store}
}

func (r *groupRepository) Create(ctx context.Context, group *entity.Group) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if group.Id == uuid.Nil {
		group.Id = uuid.New()
	}
	now := r.store.now()
	group.CreatedAt, group.UpdatedAt = now, now
	remember(r.uow.journal(), r.store.groups, group.Id)
	r.store.groups[group.Id] = *group
	return nil
}

func (r *groupRepository) Update(ctx context.Context, group *entity.Group) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	group.UpdatedAt = r.store.now()
	remember(r.uow.journal(), r.store.groups, group.Id)
	r.store.groups[group.Id] = *group
	return nil
}

func (r *groupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	remember(r.uow.journal(), r.store.groups, id)
	delete(r.store.groups, id)
	return nil
}

func (r *groupRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Group, error) {
	found, err := r.FindAll(ctx, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *groupRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Group, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return query(values(r.store.groups), specs)
}

type groupMemberRepository struct {
	store *Store
	uow   *unitOfWork
}

func NewGroupMemberRepository(store *Store) contract.GroupMemberRepository {
	return &groupMemberRepository{store: store}
}

func (r *groupMemberRepository) Create(ctx context.Context, member *entity.GroupMember) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := memberKey{memberId: member.MemberId, groupId: member.GroupId}
	if _, exists := r.store.members[key]; exists {
		return contract.ErrDuplicate
	}
	member.CreatedAt = r.store.now()
	remember(r.uow.journal(), r.store.members, key)
	r.store.members[key] = *member
	return nil
}

func (r *groupMemberRepository) Delete(ctx context.Context, memberId, groupId uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := memberKey{memberId: memberId, groupId: groupId}
	if _, exists := r.store.members[key]; !exists {
		return 0, nil
	}
	remember(r.uow.journal(), r.store.members, key)
	delete(r.store.members, key)
	return 1, nil
}

func (r *groupMemberRepository) DeleteAllByGroupId(ctx context.Context, groupId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for key := range r.store.members {
		if key.groupId == groupId {
			remember(r.uow.journal(), r.store.members, key)
			delete(r.store.members, key)
		}
	}
	return nil
}

func (r *groupMemberRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GroupMember, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return query(values(r.store.members), specs)
}

func (r *groupMemberRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := r.FindAll(ctx, specs...)
	return int64(len(found)), err
}
