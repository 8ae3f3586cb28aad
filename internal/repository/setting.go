package repository

import (
	"context"
	"fmt"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository defines the interface for key/value setting operations.
type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.SettingValue, error)
	Put(ctx context.Context, key string, value datatypes.JSON) (*models.Setting, error)
}

type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new SettingRepository instance.
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*models.SettingValue, error) {
	var value models.SettingValue
	err := r.db.WithContext(ctx).
		Model(&models.Setting{}).
		Select("value").
		Where(&models.Setting{Key: key}).
		Take(&value).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, notFound(err))
	}
	return &value, nil
}

func (r *settingRepository) Put(ctx context.Context, key string, value datatypes.JSON) (*models.Setting, error) {
	setting := models.Setting{Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update setting %s: %w", key, err)
	}
	return &setting, nil
}
