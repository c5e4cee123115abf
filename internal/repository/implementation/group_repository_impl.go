package implementation

import (
	"context"
	"errors"

	"collectify-be/internal/entity"
	"collectify-be/internal/mapper"
	"collectify-be/internal/model"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GroupRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GroupMapper
}

func NewGroupRepository(db *gorm.DB) contract.GroupRepository {
	return &GroupRepositoryImpl{
		db:     db,
		mapper: mapper.NewGroupMapper(),
	}
}

func (r *GroupRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GroupRepositoryImpl) Create(ctx context.Context, group *entity.Group) error {
	m := r.mapper.ToModel(group)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*group = *r.mapper.ToEntity(m)
	return nil
}

func (r *GroupRepositoryImpl) Update(ctx context.Context, group *entity.Group) error {
	m := r.mapper.ToModel(group)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*group = *r.mapper.ToEntity(m)
	return nil
}

func (r *GroupRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Group{}, "id = ?", id).Error
}

func (r *GroupRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Group, error) {
	var m model.Group
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GroupRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Group, error) {
	var models []*model.Group
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

type GroupMemberRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GroupMapper
}

func NewGroupMemberRepository(db *gorm.DB) contract.GroupMemberRepository {
	return &GroupMemberRepositoryImpl{
		db:     db,
		mapper: mapper.NewGroupMapper(),
	}
}

func (r *GroupMemberRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GroupMemberRepositoryImpl) Create(ctx context.Context, member *entity.GroupMember) error {
	m := r.mapper.MemberToModel(member)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*member = *r.mapper.MemberToEntity(m)
	return nil
}

func (r *GroupMemberRepositoryImpl) Delete(ctx context.Context, memberId, groupId uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("member_id = ? AND group_id = ?", memberId, groupId).
		Delete(&model.GroupMember{})
	return result.RowsAffected, result.Error
}

func (r *GroupMemberRepositoryImpl) DeleteAllByGroupId(ctx context.Context, groupId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("group_id = ?", groupId).Delete(&model.GroupMember{}).Error
}

func (r *GroupMemberRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GroupMember, error) {
	var models []*model.GroupMember
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MembersToEntities(models), nil
}

func (r *GroupMemberRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.GroupMember{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
