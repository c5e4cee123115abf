package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

type UpdateGroupRequest struct {
	Id   uuid.UUID `json:"id" validate:"required"`
	Name string    `json:"name" validate:"required,max=128"`
}

type GroupMemberRequest struct {
	MemberId uuid.UUID `json:"memberId"`
	GroupId  uuid.UUID `json:"groupId"`
}

type SimpleGroup struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	CreatorId *uuid.UUID `json:"creatorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
