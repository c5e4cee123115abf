package entity

import (
	"time"

	"github.com/google/uuid"
)

const RoleUser = "user"

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash string
	Nickname     *string
	AvatarPath   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserRole struct {
	UserId uuid.UUID
	Role   string
}

// RefreshToken stores only the sha256 hash of the opaque token handed to the client.
type RefreshToken struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	IpAddress string
	UserAgent string
	CreatedAt time.Time
}
