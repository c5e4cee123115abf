package implementation

import (
	"context"
	"errors"

	"collectify-be/internal/entity"
	"collectify-be/internal/mapper"
	"collectify-be/internal/model"
	"collectify-be/internal/repository/contract"
	"collectify-be/internal/repository/specification"

	"gorm.io/gorm"
)

type RefreshTokenRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewRefreshTokenRepository(db *gorm.DB) contract.RefreshTokenRepository {
	return &RefreshTokenRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *RefreshTokenRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RefreshTokenRepositoryImpl) Create(ctx context.Context, token *entity.RefreshToken) error {
	m := r.mapper.RefreshTokenToModel(token)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*token = *r.mapper.RefreshTokenToEntity(m)
	return nil
}

func (r *RefreshTokenRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefreshToken, error) {
	var m model.UserRefreshToken
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RefreshTokenToEntity(&m), nil
}

func (r *RefreshTokenRepositoryImpl) DeleteWhere(ctx context.Context, specs ...specification.Specification) (int64, error) {
	if len(specs) == 0 {
		return 0, gorm.ErrMissingWhereClause
	}
	result := r.applySpecifications(r.db.WithContext(ctx), specs...).Delete(&model.UserRefreshToken{})
	return result.RowsAffected, result.Error
}
