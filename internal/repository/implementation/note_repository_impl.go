package implementation

import (
	"context"
	"errors"

	"collectify-be/internal/entity"
	"collectify-be/internal/mapper"
	"collectify-be/internal/model"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// noteMutableColumns are the only columns an update may touch. A note never
// changes creator or group after creation.
var noteMutableColumns = []string{"title", "content", "updated_at"}

type NoteRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteMapper(),
	}
}

func (r *NoteRepositoryImpl) query(ctx context.Context, specs []specification.Specification) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.Note{})
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	result := r.db.WithContext(ctx).Model(m).Select(noteMutableColumns).Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	note.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Note{}).Error
}

// DeleteAllByGroupId is called inside the group deletion transaction.
func (r *NoteRepositoryImpl) DeleteAllByGroupId(ctx context.Context, groupId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("group_id = ?", groupId).Delete(&model.Note{}).Error
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	err := r.query(ctx, specs).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var notes []*model.Note
	if err := r.query(ctx, specs).Find(&notes).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(notes), nil
}

func (r *NoteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	err := r.query(ctx, specs).Count(&count).Error
	return count, err
}
