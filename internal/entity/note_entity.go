package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note holds Title and Content exactly as persisted, i.e. as ciphertext.
type Note struct {
	Id        uuid.UUID
	Title     string
	Content   string
	CreatorId *uuid.UUID
	GroupId   *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPrivate reports whether the note lives outside any group.
func (n *Note) IsPrivate() bool {
	return n.GroupId == nil
}

func (n *Note) IsCreatedBy(userId uuid.UUID) bool {
	return n.CreatorId != nil && *n.CreatorId == userId
}
