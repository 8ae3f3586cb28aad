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

	"github.com/GunarsK-portfolio/artist-site/internal/cookies"
	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
)

func newTestAdminHandler(access *mockAccessService, admin *mockAdminService) *AdminHandler {
	return NewAdminHandler(admin, access, testCookieHelper(), nil)
}

type adminEndpoint struct {
	name    string
	method  string
	path    string
	body    string
	handler func(h *AdminHandler) gin.HandlerFunc
}

var adminEndpoints = []adminEndpoint{
	{"list admins", http.MethodGet, "/api/v1/admin/admins", "", func(h *AdminHandler) gin.HandlerFunc { return h.ListAdmins }},
	{"create admin", http.MethodPost, "/api/v1/admin/admins", `{"email":"x@example.com"}`, func(h *AdminHandler) gin.HandlerFunc { return h.CreateAdmin }},
	{"delete admin", http.MethodDelete, "/api/v1/admin/admins", `{"id":"abc"}`, func(h *AdminHandler) gin.HandlerFunc { return h.DeleteAdmin }},
	{"get settings", http.MethodGet, "/api/v1/admin/settings", "", func(h *AdminHandler) gin.HandlerFunc { return h.GetSetting }},
	{"update settings", http.MethodPut, "/api/v1/admin/settings", `{"value":"T"}`, func(h *AdminHandler) gin.HandlerFunc { return h.UpdateSetting }},
	{"list events", http.MethodGet, "/api/v1/admin/events", "", func(h *AdminHandler) gin.HandlerFunc { return h.ListEvents }},
	{"create event", http.MethodPost, "/api/v1/admin/events", `{"title":"Show"}`, func(h *AdminHandler) gin.HandlerFunc { return h.CreateEvent }},
	{"update event", http.MethodPut, "/api/v1/admin/events/evt-1", `{"title":"Show"}`, func(h *AdminHandler) gin.HandlerFunc { return h.UpdateEvent }},
	{"delete event", http.MethodDelete, "/api/v1/admin/events/evt-1", "", func(h *AdminHandler) gin.HandlerFunc { return h.DeleteEvent }},
}

// =============================================================================
// Authorization preamble
// =============================================================================

func TestAdminEndpoints_Unauthenticated(t *testing.T) {
	for _, ep := range adminEndpoints {
		t.Run(ep.name, func(t *testing.T) {
			access := denyWith(service.ErrUnauthenticated)
			admin := &mockAdminService{}
			h := newTestAdminHandler(access, admin)

			w := performRequest(ep.handler(h), ep.method, ep.path, ep.body)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
			if got := decodeError(w); got != "Unauthorized" {
				t.Errorf("error = %q, want Unauthorized", got)
			}
			if len(admin.calls) != 0 {
				t.Errorf("service calls = %v, want none", admin.calls)
			}
			if access.calls != 1 {
				t.Errorf("preamble runs = %d, want 1", access.calls)
			}
		})
	}
}

func TestAdminEndpoints_FailClosed(t *testing.T) {
	causes := map[string]error{
		"not an admin":         service.ErrForbidden,
		"role lookup failed":   errors.Join(service.ErrForbidden, errors.New("connection refused")),
		"session lookup error": errors.Join(service.ErrUnauthenticated, errors.New("redis timeout")),
	}

	for _, ep := range adminEndpoints {
		for cause, err := range causes {
			t.Run(ep.name+"/"+cause, func(t *testing.T) {
				admin := &mockAdminService{}
				h := newTestAdminHandler(denyWith(err), admin)

				w := performRequest(ep.handler(h), ep.method, ep.path, ep.body)

				want := http.StatusForbidden
				if errors.Is(err, service.ErrUnauthenticated) {
					want = http.StatusUnauthorized
				}
				if w.Code != want {
					t.Errorf("status = %d, want %d", w.Code, want)
				}
				if len(admin.calls) != 0 {
					t.Errorf("service calls = %v, want none", admin.calls)
				}
			})
		}
	}
}

func TestAdminGuard_PersistsRefreshedSessionOnDenial(t *testing.T) {
	access := &mockAccessService{
		requireAdminFunc: func(ctx context.Context, tokens service.SessionTokens) (*service.Access, error) {
			return &service.Access{
				Principal: models.Principal{ID: testAdminID},
				Refreshed: &service.Session{AccessToken: "new-a", RefreshToken: "new-r", AccessExpiry: time.Minute, RefreshExpiry: time.Hour},
			}, service.ErrForbidden
		},
	}
	h := newTestAdminHandler(access, &mockAdminService{})

	w := performRequest(h.ListAdmins, http.MethodGet, "/api/v1/admin/admins", "")

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	written := map[string]string{}
	for _, cookie := range w.Result().Cookies() {
		written[cookie.Name] = cookie.Value
	}
	if written[cookies.AccessTokenCookie] != "new-a" || written[cookies.RefreshTokenCookie] != "new-r" {
		t.Errorf("refreshed cookies not written: %v", written)
	}
}

func TestAdminGuard_ReadsSessionCookies(t *testing.T) {
	var seen service.SessionTokens
	access := &mockAccessService{
		requireAdminFunc: func(ctx context.Context, tokens service.SessionTokens) (*service.Access, error) {
			seen = tokens
			return nil, service.ErrUnauthenticated
		},
	}
	h := newTestAdminHandler(access, &mockAdminService{})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/admin/admins", h.ListAdmins)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/admins", nil)
	req.AddCookie(&http.Cookie{Name: cookies.AccessTokenCookie, Value: "a"})
	req.AddCookie(&http.Cookie{Name: cookies.RefreshTokenCookie, Value: "r"})
	router.ServeHTTP(w, req)

	if seen.AccessToken != "a" || seen.RefreshToken != "r" {
		t.Errorf("preamble saw %+v", seen)
	}
}

// =============================================================================
// Admins
// =============================================================================

func TestListAdmins(t *testing.T) {
	admin := &mockAdminService{
		listAdminsFunc: func(ctx context.Context) ([]models.AdminSummary, error) {
			return []models.AdminSummary{{ID: testAdminID, Role: models.RoleAdmin}}, nil
		},
	}
	h := newTestAdminHandler(allowAdmin(), admin)

	w := performRequest(h.ListAdmins, http.MethodGet, "/api/v1/admin/admins", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var rows []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(rows) != 1 || rows[0]["id"] != testAdminID || rows[0]["role"] != "admin" {
		t.Errorf("body = %s", w.Body.String())
	}
	if _, ok := rows[0]["email"]; ok {
		t.Error("admin listing must not include email")
	}
}

func TestListAdmins_Empty(t *testing.T) {
	h := newTestAdminHandler(allowAdmin(), &mockAdminService{})

	w := performRequest(h.ListAdmins, http.MethodGet, "/api/v1/admin/admins", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("status = %d body = %s, want 200 []", w.Code, w.Body.String())
	}
}

func TestListAdmins_StoreError(t *testing.T) {
	admin := &mockAdminService{
		listAdminsFunc: func(ctx context.Context) ([]models.AdminSummary, error) {
			return nil, errors.New("relation \"profiles\" does not exist")
		},
	}
	h := newTestAdminHandler(allowAdmin(), admin)

	w := performRequest(h.ListAdmins, http.MethodGet, "/api/v1/admin/admins", "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := decodeError(w); got != `relation "profiles" does not exist` {
		t.Errorf("error = %q, want upstream message", got)
	}
}

func TestCreateAdmin_NotImplemented(t *testing.T) {
	admin := &mockAdminService{}
	h := newTestAdminHandler(allowAdmin(), admin)

	w := performRequest(h.CreateAdmin, http.MethodPost, "/api/v1/admin/admins", `{"email":"new@example.com"}`)

	if w.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", w.Code)
	}
	if decodeError(w) == "" {
		t.Error("501 response should describe why")
	}
}

func TestDeleteAdmin(t *testing.T) {
	revokeRequiresID := func(ctx context.Context, id string) (bool, error) {
		if id == "" {
			return false, fmt.Errorf("%w: id is required", service.ErrInvalidInput)
		}
		return true, nil
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "valid id", body: `{"id":"` + testAdminID + `"}`, wantStatus: http.StatusOK},
		{name: "missing id", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "empty body", body: "", wantStatus: http.StatusBadRequest},
		{name: "malformed JSON", body: `{"id":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestAdminHandler(allowAdmin(), &mockAdminService{revokeAdminFunc: revokeRequiresID})

			w := performRequest(h.DeleteAdmin, http.MethodDelete, "/api/v1/admin/admins", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestDeleteAdmin_Twice(t *testing.T) {
	rows := map[string]bool{testAdminID: true}
	admin := &mockAdminService{
		revokeAdminFunc: func(ctx context.Context, id string) (bool, error) {
			existed := rows[id]
			delete(rows, id)
			return existed, nil
		},
	}
	h := newTestAdminHandler(allowAdmin(), admin)
	body := `{"id":"` + testAdminID + `"}`

	for i := 0; i < 2; i++ {
		w := performRequest(h.DeleteAdmin, http.MethodDelete, "/api/v1/admin/admins", body)
		if w.Code != http.StatusOK {
			t.Errorf("delete #%d status = %d, want 200", i+1, w.Code)
		}
	}
	if len(admin.calls) != 2 {
		t.Errorf("service calls = %d, want 2", len(admin.calls))
	}
}

// =============================================================================
// Settings
// =============================================================================

func TestGetSetting(t *testing.T) {
	admin := &mockAdminService{
		getSettingFunc: func(ctx context.Context, key string) (*models.SettingValue, error) {
			if key != models.SettingMainTitle {
				t.Errorf("key = %s, want main_title", key)
			}
			return &models.SettingValue{Value: []byte(`"Summer Tour"`)}, nil
		},
	}
	h := newTestAdminHandler(allowAdmin(), admin)

	w := performRequest(h.GetSetting, http.MethodGet, "/api/v1/admin/settings", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"value":{"value":"Summer Tour"}}` {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGetSetting_Missing(t *testing.T) {
	admin := &mockAdminService{
		getSettingFunc: func(ctx context.Context, key string) (*models.SettingValue, error) {
			return nil, fmt.Errorf("%w: setting %s", service.ErrNotFound, key)
		},
	}
	h := newTestAdminHandler(allowAdmin(), admin)

	w := performRequest(h.GetSetting, http.MethodGet, "/api/v1/admin/settings", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestUpdateSetting(t *testing.T) {
	var stored json.RawMessage
	admin := &mockAdminService{
		updateSettingFunc: func(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
			if len(value) == 0 {
				return nil, fmt.Errorf("%w: value is required", service.ErrInvalidInput)
			}
			stored = value
			return &models.Setting{Key: key, Value: []byte(value)}, nil
		},
		getSettingFunc: func(ctx context.Context, key string) (*models.SettingValue, error) {
			return &models.SettingValue{Value: []byte(stored)}, nil
		},
	}
	h := newTestAdminHandler(allowAdmin(), admin)

	w := performRequest(h.UpdateSetting, http.MethodPut, "/api/v1/admin/settings", `{"value":{"text":"New Album","accent":"#ff0066"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var resp struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Message == "" || len(resp.Data) == 0 {
		t.Errorf("response should carry message and data: %s", w.Body.String())
	}

	// A subsequent read returns what was written.
	w = performRequest(h.GetSetting, http.MethodGet, "/api/v1/admin/settings", "")
	var read struct {
		Value struct {
			Value json.RawMessage `json:"value"`
		} `json:"value"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &read); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	var got, want any
	_ = json.Unmarshal(read.Value.Value, &got)
	_ = json.Unmarshal([]byte(`{"text":"New Album","accent":"#ff0066"}`), &want)
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("read back %s", read.Value.Value)
	}
}

func TestUpdateSetting_MissingValue(t *testing.T) {
	admin := &mockAdminService{
		updateSettingFunc: func(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
			return nil, fmt.Errorf("%w: value is required", service.ErrInvalidInput)
		},
	}
	h := newTestAdminHandler(allowAdmin(), admin)

	for _, body := range []string{`{}`, `{"value":null}`, ""} {
		w := performRequest(h.UpdateSetting, http.MethodPut, "/api/v1/admin/settings", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestUpdateSetting_AuthorizationBeforeValidation(t *testing.T) {
	admin := &mockAdminService{}
	h := newTestAdminHandler(denyWith(service.ErrUnauthenticated), admin)

	w := performRequest(h.UpdateSetting, http.MethodPut, "/api/v1/admin/settings", `{"value":`)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if len(admin.calls) != 0 {
		t.Errorf("service calls = %v, want none", admin.calls)
	}
}
