package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
)

func setupEventsRouter(h *AdminHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/admin/events", h.ListEvents)
	router.POST("/api/v1/admin/events", h.CreateEvent)
	router.PUT("/api/v1/admin/events/:id", h.UpdateEvent)
	router.DELETE("/api/v1/admin/events/:id", h.DeleteEvent)
	return router
}

func serveJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateEvent(t *testing.T) {
	var received service.EventInput
	admin := &mockAdminService{
		createEventFunc: func(ctx context.Context, input service.EventInput) (*models.Event, error) {
			received = input
			return &models.Event{ID: "evt-9", Title: input.Title, City: input.City, StartsAt: input.StartsAt}, nil
		},
	}
	router := setupEventsRouter(newTestAdminHandler(allowAdmin(), admin))

	w := serveJSON(router, http.MethodPost, "/api/v1/admin/events",
		`{"title":"Release Party","city":"Riga","starts_at":"2026-12-01T20:00:00Z"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if received.Title != "Release Party" || received.City != "Riga" {
		t.Errorf("service received %+v", received)
	}
	if !received.StartsAt.Equal(time.Date(2026, 12, 1, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("starts_at = %v", received.StartsAt)
	}

	var event models.Event
	if err := json.Unmarshal(w.Body.Bytes(), &event); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if event.ID != "evt-9" {
		t.Errorf("event id = %s, want evt-9", event.ID)
	}
}

func TestCreateEvent_InvalidInput(t *testing.T) {
	admin := &mockAdminService{
		createEventFunc: func(ctx context.Context, input service.EventInput) (*models.Event, error) {
			return nil, fmt.Errorf("%w: title is required", service.ErrInvalidInput)
		},
	}
	router := setupEventsRouter(newTestAdminHandler(allowAdmin(), admin))

	w := serveJSON(router, http.MethodPost, "/api/v1/admin/events", `{"city":"Riga"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	w = serveJSON(router, http.MethodPost, "/api/v1/admin/events", `{"starts_at":"tomorrow"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unparseable time: status = %d, want 400", w.Code)
	}
}

func TestUpdateEvent(t *testing.T) {
	admin := &mockAdminService{
		updateEventFunc: func(ctx context.Context, id string, input service.EventInput) (*models.Event, error) {
			if id != "evt-1" {
				return nil, fmt.Errorf("%w: event %s", service.ErrNotFound, id)
			}
			return &models.Event{ID: id, Title: input.Title}, nil
		},
	}
	router := setupEventsRouter(newTestAdminHandler(allowAdmin(), admin))
	body := `{"title":"Moved Show","starts_at":"2026-12-02T20:00:00Z"}`

	if w := serveJSON(router, http.MethodPut, "/api/v1/admin/events/evt-1", body); w.Code != http.StatusOK {
		t.Errorf("existing event: status = %d, want 200", w.Code)
	}
	if w := serveJSON(router, http.MethodPut, "/api/v1/admin/events/missing", body); w.Code != http.StatusNotFound {
		t.Errorf("missing event: status = %d, want 404", w.Code)
	}
}

func TestDeleteEvent(t *testing.T) {
	var deleted string
	admin := &mockAdminService{
		deleteEventFunc: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	router := setupEventsRouter(newTestAdminHandler(allowAdmin(), admin))

	w := serveJSON(router, http.MethodDelete, "/api/v1/admin/events/evt-3", "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if deleted != "evt-3" {
		t.Errorf("deleted = %s, want evt-3", deleted)
	}
}

func TestDeleteEvent_NotFound(t *testing.T) {
	admin := &mockAdminService{
		deleteEventFunc: func(ctx context.Context, id string) error {
			return fmt.Errorf("%w: event %s", service.ErrNotFound, id)
		},
	}
	router := setupEventsRouter(newTestAdminHandler(allowAdmin(), admin))

	w := serveJSON(router, http.MethodDelete, "/api/v1/admin/events/not-a-uuid", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListEvents_StoreError(t *testing.T) {
	admin := &mockAdminService{
		listEventsFunc: func(ctx context.Context) ([]models.Event, error) {
			return nil, errors.New("connection reset by peer")
		},
	}
	router := setupEventsRouter(newTestAdminHandler(allowAdmin(), admin))

	w := serveJSON(router, http.MethodGet, "/api/v1/admin/events", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if decodeError(w) != "connection reset by peer" {
		t.Errorf("error = %q", decodeError(w))
	}
}

// =============================================================================
// Public
// =============================================================================

func TestUpcomingEvents(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	var from time.Time
	admin := &mockAdminService{
		listUpcomingFunc: func(ctx context.Context, f time.Time) ([]models.Event, error) {
			from = f
			return []models.Event{{ID: "evt-1", Title: "Next Show", StartsAt: now.Add(24 * time.Hour)}}, nil
		},
	}
	h := NewPublicHandler(admin, nil)
	h.now = func() time.Time { return now }

	w := performRequest(h.UpcomingEvents, http.MethodGet, "/api/v1/events", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !from.Equal(now) {
		t.Errorf("from = %v, want %v", from, now)
	}
	var events []models.Event
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil || len(events) != 1 {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMainTitle(t *testing.T) {
	h := NewPublicHandler(&mockAdminService{}, nil)

	w := performRequest(h.MainTitle, http.MethodGet, "/api/v1/settings/main_title", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"value":{"value":"Title"}}` {
		t.Errorf("status = %d body = %s", w.Code, w.Body.String())
	}

	missing := &mockAdminService{
		getSettingFunc: func(ctx context.Context, key string) (*models.SettingValue, error) {
			return nil, fmt.Errorf("%w: setting %s", service.ErrNotFound, key)
		},
	}
	w = performRequest(NewPublicHandler(missing, nil).MainTitle, http.MethodGet, "/api/v1/settings/main_title", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing setting: status = %d, want 404", w.Code)
	}
}
