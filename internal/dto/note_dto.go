package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title   string     `json:"title" validate:"required"`
	Content string     `json:"content"`
	GroupId *uuid.UUID `json:"groupId"`
}

// UpdateNoteRequest leaves a field untouched when it is nil.
type UpdateNoteRequest struct {
	Id      uuid.UUID `json:"id" validate:"required"`
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
}

type SimpleNote struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	GroupId   *uuid.UUID `json:"groupId"`
	CreatorId *uuid.UUID `json:"creatorId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
