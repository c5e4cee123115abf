package specification

import (
	"time"

	"collectify-be/internal/entity"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

func (s ByEmail) IsSatisfiedBy(candidate any) bool {
	u, ok := candidate.(*entity.User)
	return ok && u.Email == s.Email
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

func (s UserOwnedBy) IsSatisfiedBy(candidate any) bool {
	switch v := candidate.(type) {
	case *entity.RefreshToken:
		return v.UserId == s.UserID
	case *entity.UserRole:
		return v.UserId == s.UserID
	}
	return false
}

// Token Specs

type ByTokenHash struct {
	Hash string
}

func (s ByTokenHash) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("token_hash = ?", s.Hash)
}

func (s ByTokenHash) IsSatisfiedBy(candidate any) bool {
	t, ok := candidate.(*entity.RefreshToken)
	return ok && t.TokenHash == s.Hash
}

// ExpiresAfter keeps tokens still valid at the given instant.
type ExpiresAfter struct {
	Time time.Time
}

func (s ExpiresAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at > ?", s.Time)
}

func (s ExpiresAfter) IsSatisfiedBy(candidate any) bool {
	t, ok := candidate.(*entity.RefreshToken)
	return ok && t.ExpiresAt.After(s.Time)
}

// ExpiredAt keeps tokens no longer valid at the given instant.
type ExpiredAt struct {
	Time time.Time
}

func (s ExpiredAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at <= ?", s.Time)
}

func (s ExpiredAt) IsSatisfiedBy(candidate any) bool {
	t, ok := candidate.(*entity.RefreshToken)
	return ok && !t.ExpiresAt.After(s.Time)
}
