package repository

import (
	"context"
	"fmt"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the interface for role record operations.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	ListByRole(ctx context.Context, role string) ([]models.AdminSummary, error)
	SetRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) (int64, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository instance.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find profile %s: %w", id, notFound(err))
	}
	return &profile, nil
}

func (r *profileRepository) ListByRole(ctx context.Context, role string) ([]models.AdminSummary, error) {
	var results []models.AdminSummary
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("id", "role").
		Where("role = ?", role).
		Order("created_at").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles with role %s: %w", role, err)
	}
	if results == nil {
		results = []models.AdminSummary{}
	}
	return results, nil
}

func (r *profileRepository) SetRole(ctx context.Context, id, role string) error {
	profile := models.Profile{ID: id, Role: role}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(&profile).Error
	if err != nil {
		return fmt.Errorf("failed to set role for profile %s: %w", id, err)
	}
	return nil
}

// Delete removes only the role record; the account row is left intact.
func (r *profileRepository) Delete(ctx context.Context, id string) (int64, error) {
	if !isUUID(id) {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Profile{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete profile %s: %w", id, result.Error)
	}
	return result.RowsAffected, nil
}
