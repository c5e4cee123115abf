package entity

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	Id        uuid.UUID
	Name      string
	CreatorId *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (g *Group) IsCreatedBy(userId uuid.UUID) bool {
	return g.CreatorId != nil && *g.CreatorId == userId
}

// GroupMember is identified by the (MemberId, GroupId) pair.
type GroupMember struct {
	MemberId  uuid.UUID
	GroupId   uuid.UUID
	CreatedAt time.Time
}
