package memory

import (
	"context"
	"fmt"

	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/unitofwork"
)

type repositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &repositoryFactory{store: store}
}

func (f *repositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: f.store}
}

// unitOfWork serialises transactions on the store. Rollback undoes only the
// writes made through this unit of work. Reads outside a transaction may
// observe uncommitted writes.
type unitOfWork struct {
	store *Store
	undo  *undoLog
}

// journal is nil outside a transaction, and on a nil unit of work.
func (u *unitOfWork) journal() *undoLog {
	if u == nil {
		return nil
	}
	return u.undo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.undo != nil {
		return fmt.Errorf("transaction already started")
	}
	u.store.txMu.Lock()
	u.undo = &undoLog{}
	return nil
}

func (u *unitOfWork) Commit() error {
	if u.undo == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.undo = nil
	u.store.txMu.Unlock()
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.undo == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.mu.Lock()
	u.undo.rewind()
	u.store.mu.Unlock()
	u.undo = nil
	u.store.txMu.Unlock()
	return nil
}

// Repository Accessors

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{store: u.store, uow: u}
}

func (u *unitOfWork) RefreshTokenRepository() contract.RefreshTokenRepository {
	return &refreshTokenRepository{store: u.store, uow: u}
}

func (u *unitOfWork) NoteRepository() contract.NoteRepository {
	return &noteRepository{store: u.store, uow: u}
}

func (u *unitOfWork) GroupRepository() contract.GroupRepository {
	return &groupRepository{store: u.store, uow: u}
}

func (u *unitOfWork) GroupMemberRepository() contract.GroupMemberRepository {
	return &groupMemberRepository{store: u.store, uow: u}
}
