package specification

import (
	"collectify-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByMemberID struct {
	MemberID uuid.UUID
}

func (s ByMemberID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("member_id = ?", s.MemberID)
}

func (s ByMemberID) IsSatisfiedBy(candidate any) bool {
	m, ok := candidate.(*entity.GroupMember)
	return ok && m.MemberId == s.MemberID
}
