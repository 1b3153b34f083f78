package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
)

type MetaRepo struct {
	db *gorm.DB
}

func NewMetaRepo(db *gorm.DB) *MetaRepo {
	return &MetaRepo{db: db}
}

func (r *MetaRepo) Get(ctx context.Context, key string) (string, error) {
	var m model.AppMeta
	res := r.db.WithContext(ctx).Where("key = ?", key).First(&m)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return "", customErrors.ErrNotFound
	}
	if err := res.Error; err != nil {
		return "", customErrors.WrapInternal(err, "MetaGet")
	}
	return m.Value, nil
}

func (r *MetaRepo) Set(ctx context.Context, key, value string) error {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&model.AppMeta{Key: key, Value: value})
	if err := res.Error; err != nil {
		return customErrors.WrapInternal(err, "MetaSet")
	}
	return nil
}
