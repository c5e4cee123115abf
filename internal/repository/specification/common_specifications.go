package specification

import (
	"fmt"
	"slices"
	"time"

	"collectify-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

func (s ByID) IsSatisfiedBy(candidate any) bool {
	id, ok := idOf(candidate)
	return ok && id == s.ID
}

// ByIDs filters by a list of IDs
type ByIDs struct {
	IDs []uuid.UUID
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id IN ?", s.IDs)
}

func (s ByIDs) IsSatisfiedBy(candidate any) bool {
	id, ok := idOf(candidate)
	return ok && slices.Contains(s.IDs, id)
}

// OrderBy applies ordering. In memory only created_at and updated_at are understood.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

func (s OrderBy) Less(a, b any) bool {
	ta, tb := timestampOf(a, s.Field), timestampOf(b, s.Field)
	if s.Desc {
		return ta.After(tb)
	}
	return ta.Before(tb)
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

func idOf(candidate any) (uuid.UUID, bool) {
	switch v := candidate.(type) {
	case *entity.User:
		return v.Id, true
	case *entity.Note:
		return v.Id, true
	case *entity.Group:
		return v.Id, true
	case *entity.RefreshToken:
		return v.Id, true
	}
	return uuid.Nil, false
}

func timestampOf(candidate any, field string) time.Time {
	var created, updated time.Time
	switch v := candidate.(type) {
	case *entity.User:
		created, updated = v.CreatedAt, v.UpdatedAt
	case *entity.Note:
		created, updated = v.CreatedAt, v.UpdatedAt
	case *entity.Group:
		created, updated = v.CreatedAt, v.UpdatedAt
	case *entity.GroupMember:
		created, updated = v.CreatedAt, v.CreatedAt
	case *entity.RefreshToken:
		created, updated = v.CreatedAt, v.CreatedAt
	}
	if field == "updated_at" {
		return updated
	}
	return created
}
