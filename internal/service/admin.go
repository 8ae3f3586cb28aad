package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AdminService manages the admin role records and site content.
type AdminService interface {
	ListAdmins(ctx context.Context) ([]models.AdminSummary, error)
	CreateAdmin(ctx context.Context) error
	RevokeAdmin(ctx context.Context, id string) (bool, error)

	GetSetting(ctx context.Context, key string) (*models.SettingValue, error)
	UpdateSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error)

	ListEvents(ctx context.Context) ([]models.Event, error)
	ListUpcomingEvents(ctx context.Context, from time.Time) ([]models.Event, error)
	CreateEvent(ctx context.Context, input EventInput) (*models.Event, error)
	UpdateEvent(ctx context.Context, id string, input EventInput) (*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// EventInput is the writable subset of an event.
type EventInput struct {
	Title     string    `json:"title"`
	Venue     string    `json:"venue"`
	City      string    `json:"city"`
	StartsAt  time.Time `json:"starts_at"`
	TicketURL string    `json:"ticket_url"`
}

type adminService struct {
	profiles repository.ProfileRepository
	settings repository.SettingRepository
	events   repository.EventRepository
	timeout  time.Duration
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(profiles repository.ProfileRepository, settings repository.SettingRepository, events repository.EventRepository, timeout time.Duration) AdminService {
	return &adminService{
		profiles: profiles,
		settings: settings,
		events:   events,
		timeout:  timeout,
	}
}

func (s *adminService) ListAdmins(ctx context.Context) ([]models.AdminSummary, error) {
	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.profiles.ListByRole(ctx, models.RoleAdmin)
}

// CreateAdmin always fails: creating an account needs the operator CLI,
// which holds privileges the web process does not.
func (s *adminService) CreateAdmin(ctx context.Context) error {
	return fmt.Errorf("%w: admin accounts are created with the sitectl CLI", ErrUnsupported)
}

// RevokeAdmin deletes the role record only. The account and its sessions
// survive; they simply stop being privileged. The boolean reports whether a
// row was removed.
func (s *adminService) RevokeAdmin(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if _, err := uuid.Parse(id); err != nil {
		return false, fmt.Errorf("%w: id must be a UUID", ErrInvalidInput)
	}

	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()

	affected, err := s.profiles.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *adminService) GetSetting(ctx context.Context, key string) (*models.SettingValue, error) {
	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()

	value, err := s.settings.Get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: setting %s", ErrNotFound, key)
	}
	return value, err
}

func (s *adminService) UpdateSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	if isEmptyJSON(value) {
		return nil, fmt.Errorf("%w: value is required", ErrInvalidInput)
	}

	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.settings.Put(ctx, key, datatypes.JSON(value))
}

func (s *adminService) ListEvents(ctx context.Context) ([]models.Event, error) {
	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.events.List(ctx)
}

func (s *adminService) ListUpcomingEvents(ctx context.Context, from time.Time) ([]models.Event, error) {
	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.events.ListUpcoming(ctx, from)
}

func (s *adminService) CreateEvent(ctx context.Context, input EventInput) (*models.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	event := &models.Event{ID: uuid.NewString()}
	input.apply(event)

	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *adminService) UpdateEvent(ctx context.Context, id string, input EventInput) (*models.Event, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: event %s", ErrNotFound, id)
	}

	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()

	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: event %s", ErrNotFound, id)
		}
		return nil, err
	}

	input.apply(event)
	if err := s.events.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *adminService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: event %s", ErrNotFound, id)
	}

	ctx, cancel := WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.events.Delete(ctx, id)
}

func (in EventInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if in.StartsAt.IsZero() {
		return fmt.Errorf("%w: starts_at is required", ErrInvalidInput)
	}
	return nil
}

func (in EventInput) apply(event *models.Event) {
	event.Title = strings.TrimSpace(in.Title)
	event.Venue = in.Venue
	event.City = in.City
	event.StartsAt = in.StartsAt.UTC()
	event.TicketURL = in.TicketURL
}

// isEmptyJSON treats a missing value, null and the empty string as empty.
func isEmptyJSON(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return strings.TrimSpace(s) == ""
	}
	return false
}
