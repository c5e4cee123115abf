package dto

import (
	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Nickname   *string   `json:"nickname"`
	AvatarPath *string   `json:"avatarPath"`
}

// EditProfileRequest is bound from multipart form fields; the avatar file
// travels separately.
type EditProfileRequest struct {
	Nickname *string `form:"nickname" validate:"omitempty,max=64"`
}

type AvatarUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

type SimpleMember struct {
	Id         uuid.UUID `json:"id"`
	Nickname   *string   `json:"nickname"`
	AvatarPath *string   `json:"avatarPath"`
}
