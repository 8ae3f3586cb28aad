package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"gorm.io/gorm"
)

// EventRepository defines the interface for event listing operations.
type EventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error)
	FindByID(ctx context.Context, id string) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) List(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	if err := r.db.WithContext(ctx).Order("starts_at").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) ListUpcoming(ctx context.Context, from time.Time) ([]models.Event, error) {
	events := []models.Event{}
	err := r.db.WithContext(ctx).Where("starts_at >= ?", from).Order("starts_at").Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	return events, nil
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if !isUUID(id) {
		return nil, fmt.Errorf("failed to find event %s: %w", id, ErrNotFound)
	}
	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to find event %s: %w", id, notFound(err))
	}
	return &event, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	if err := r.db.WithContext(ctx).Save(event).Error; err != nil {
		return fmt.Errorf("failed to update event %s: %w", event.ID, err)
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Event{}).Error; err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}
