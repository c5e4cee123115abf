package memory

import (
	"context"

	"collectify-be/internal/entity"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
)

type noteRepository struct {
	store *Store
	uow   *unitOfWork
}

func NewNoteRepository(store *Store) contract.NoteRepository {
	return &noteRepository{store: store}
}

func (r *noteRepository) Create(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if note.Id == uuid.Nil {
		note.Id = uuid.New()
	}
	now := r.store.now()
	note.CreatedAt, note.UpdatedAt = now, now
	remember(r.uow.journal(), r.store.notes, note.Id)
	r.store.notes[note.Id] = *note
	return nil
}

func (r *noteRepository) Update(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	note.UpdatedAt = r.store.now()
	remember(r.uow.journal(), r.store.notes, note.Id)
	r.store.notes[note.Id] = *note
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	remember(r.uow.journal(), r.store.notes, id)
	delete(r.store.notes, id)
	return nil
}

func (r *noteRepository) DeleteAllByGroupId(ctx context.Context, groupId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, n := range r.store.notes {
		if n.GroupId != nil && *n.GroupId == groupId {
			remember(r.uow.journal(), r.store.notes, id)
			delete(r.store.notes, id)
		}
	}
	return nil
}

func (r *noteRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	found, err := r.FindAll(ctx, specs...)
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return found[0], nil
}

func (r *noteRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return query(values(r.store.notes), specs)
}

func (r *noteRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	found, err := r.FindAll(ctx, specs...)
	return int64(len(found)), err
}
