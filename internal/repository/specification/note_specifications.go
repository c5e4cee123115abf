package specification

import (
	"collectify-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByCreatorID matches notes and groups created by the user.
type ByCreatorID struct {
	CreatorID uuid.UUID
}

func (s ByCreatorID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("creator_id = ?", s.CreatorID)
}

func (s ByCreatorID) IsSatisfiedBy(candidate any) bool {
	switch v := candidate.(type) {
	case *entity.Note:
		return v.IsCreatedBy(s.CreatorID)
	case *entity.Group:
		return v.IsCreatedBy(s.CreatorID)
	}
	return false
}

// ByGroupID matches notes and memberships of a group.
type ByGroupID struct {
	GroupID uuid.UUID
}

func (s ByGroupID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("group_id = ?", s.GroupID)
}

func (s ByGroupID) IsSatisfiedBy(candidate any) bool {
	switch v := candidate.(type) {
	case *entity.Note:
		return v.GroupId != nil && *v.GroupId == s.GroupID
	case *entity.GroupMember:
		return v.GroupId == s.GroupID
	}
	return false
}
