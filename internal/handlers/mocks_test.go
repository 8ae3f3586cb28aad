package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/config"
	"github.com/GunarsK-portfolio/artist-site/internal/cookies"
	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
)

const testAdminID = "3d5e7f90-1a2b-4c3d-8e9f-a0b1c2d3e4f5"

// =============================================================================
// Mock services
// =============================================================================

type mockAccessService struct {
	calls            int
	requireAdminFunc func(ctx context.Context, tokens service.SessionTokens) (*service.Access, error)
}

func (m *mockAccessService) RequireAdmin(ctx context.Context, tokens service.SessionTokens) (*service.Access, error) {
	m.calls++
	if m.requireAdminFunc != nil {
		return m.requireAdminFunc(ctx, tokens)
	}
	return nil, service.ErrUnauthenticated
}

func allowAdmin() *mockAccessService {
	return &mockAccessService{
		requireAdminFunc: func(ctx context.Context, tokens service.SessionTokens) (*service.Access, error) {
			return &service.Access{Principal: models.Principal{ID: testAdminID}}, nil
		},
	}
}

func denyWith(err error) *mockAccessService {
	return &mockAccessService{
		requireAdminFunc: func(ctx context.Context, tokens service.SessionTokens) (*service.Access, error) {
			return nil, err
		},
	}
}

type mockAdminService struct {
	calls []string

	listAdminsFunc    func(ctx context.Context) ([]models.AdminSummary, error)
	revokeAdminFunc   func(ctx context.Context, id string) (bool, error)
	getSettingFunc    func(ctx context.Context, key string) (*models.SettingValue, error)
	updateSettingFunc func(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error)
	listEventsFunc    func(ctx context.Context) ([]models.Event, error)
	listUpcomingFunc  func(ctx context.Context, from time.Time) ([]models.Event, error)
	createEventFunc   func(ctx context.Context, input service.EventInput) (*models.Event, error)
	updateEventFunc   func(ctx context.Context, id string, input service.EventInput) (*models.Event, error)
	deleteEventFunc   func(ctx context.Context, id string) error
}

func (m *mockAdminService) ListAdmins(ctx context.Context) ([]models.AdminSummary, error) {
	m.calls = append(m.calls, "ListAdmins")
	if m.listAdminsFunc != nil {
		return m.listAdminsFunc(ctx)
	}
	return []models.AdminSummary{}, nil
}

func (m *mockAdminService) CreateAdmin(ctx context.Context) error {
	m.calls = append(m.calls, "CreateAdmin")
	return service.ErrUnsupported
}

func (m *mockAdminService) RevokeAdmin(ctx context.Context, id string) (bool, error) {
	m.calls = append(m.calls, "RevokeAdmin")
	if m.revokeAdminFunc != nil {
		return m.revokeAdminFunc(ctx, id)
	}
	return true, nil
}

func (m *mockAdminService) GetSetting(ctx context.Context, key string) (*models.SettingValue, error) {
	m.calls = append(m.calls, "GetSetting")
	if m.getSettingFunc != nil {
		return m.getSettingFunc(ctx, key)
	}
	return &models.SettingValue{Value: []byte(`"Title"`)}, nil
}

func (m *mockAdminService) UpdateSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	m.calls = append(m.calls, "UpdateSetting")
	if m.updateSettingFunc != nil {
		return m.updateSettingFunc(ctx, key, value)
	}
	return &models.Setting{Key: key, Value: []byte(value)}, nil
}

func (m *mockAdminService) ListEvents(ctx context.Context) ([]models.Event, error) {
	m.calls = append(m.calls, "ListEvents")
	if m.listEventsFunc != nil {
		return m.listEventsFunc(ctx)
	}
	return []models.Event{}, nil
}

func (m *mockAdminService) ListUpcomingEvents(ctx context.Context, from time.Time) ([]models.Event, error) {
	m.calls = append(m.calls, "ListUpcomingEvents")
	if m.listUpcomingFunc != nil {
		return m.listUpcomingFunc(ctx, from)
	}
	return []models.Event{}, nil
}

func (m *mockAdminService) CreateEvent(ctx context.Context, input service.EventInput) (*models.Event, error) {
	m.calls = append(m.calls, "CreateEvent")
	if m.createEventFunc != nil {
		return m.createEventFunc(ctx, input)
	}
	return &models.Event{ID: "evt-1", Title: input.Title, StartsAt: input.StartsAt}, nil
}

func (m *mockAdminService) UpdateEvent(ctx context.Context, id string, input service.EventInput) (*models.Event, error) {
	m.calls = append(m.calls, "UpdateEvent")
	if m.updateEventFunc != nil {
		return m.updateEventFunc(ctx, id, input)
	}
	return &models.Event{ID: id, Title: input.Title, StartsAt: input.StartsAt}, nil
}

func (m *mockAdminService) DeleteEvent(ctx context.Context, id string) error {
	m.calls = append(m.calls, "DeleteEvent")
	if m.deleteEventFunc != nil {
		return m.deleteEventFunc(ctx, id)
	}
	return nil
}

type mockSessionService struct {
	getUserFunc  func(ctx context.Context, tokens service.SessionTokens) (*service.UserResult, error)
	exchangeFunc func(ctx context.Context, code string) (*service.Session, error)
	signInFunc   func(ctx context.Context, email, password string) (string, error)
	signOutFunc  func(ctx context.Context, tokens service.SessionTokens) error
}

func (m *mockSessionService) GetUser(ctx context.Context, tokens service.SessionTokens) (*service.UserResult, error) {
	if m.getUserFunc != nil {
		return m.getUserFunc(ctx, tokens)
	}
	return &service.UserResult{}, nil
}

func (m *mockSessionService) ExchangeCodeForSession(ctx context.Context, code string) (*service.Session, error) {
	if m.exchangeFunc != nil {
		return m.exchangeFunc(ctx, code)
	}
	return nil, service.ErrInvalidCode
}

func (m *mockSessionService) SignIn(ctx context.Context, email, password string) (string, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, email, password)
	}
	return "", service.ErrInvalidCredentials
}

func (m *mockSessionService) SignOut(ctx context.Context, tokens service.SessionTokens) error {
	if m.signOutFunc != nil {
		return m.signOutFunc(ctx, tokens)
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func testCookieHelper() *cookies.Helper {
	return cookies.NewHelper(config.CookieConfig{Path: "/"})
}

func performRequest(handler gin.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	c.Request = req

	handler(c)
	return w
}

func decodeError(w *httptest.ResponseRecorder) string {
	var resp ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp.Error
}
