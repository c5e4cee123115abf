package unitofwork

import (
	"context"

	"collectify-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	RefreshTokenRepository() contract.RefreshTokenRepository
	NoteRepository() contract.NoteRepository
	GroupRepository() contract.GroupRepository
	GroupMemberRepository() contract.GroupMemberRepository
}
