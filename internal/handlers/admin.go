package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/GunarsK-portfolio/artist-site/internal/cookies"
	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler serves the admin API. Every method re-runs the authorization
// preamble; it does not rely on the page gate.
type AdminHandler struct {
	adminService service.AdminService
	guard        *adminGuard
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(adminService service.AdminService, access service.AccessService, cookieHelper *cookies.Helper, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		adminService: adminService,
		guard:        &adminGuard{access: access, cookies: cookieHelper, logger: logger},
		logger:       logger,
	}
}

// DeleteAdminRequest is the body of the revoke endpoint.
type DeleteAdminRequest struct {
	ID string `json:"id"`
}

// UpdateSettingRequest is the body of the settings update endpoint.
type UpdateSettingRequest struct {
	Value json.RawMessage `json:"value"`
}

// SettingResponse wraps the value projection of a setting.
type SettingResponse struct {
	Value *models.SettingValue `json:"value"`
}

// UpdateSettingResponse is returned after a successful settings update.
type UpdateSettingResponse struct {
	Message string          `json:"message"`
	Data    *models.Setting `json:"data"`
}

// ListAdmins godoc
// @Summary List admins
// @Description List profiles with the admin role. Only id and role are returned.
// @Tags admin
// @Produce json
// @Success 200 {array} models.AdminSummary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/admins [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	if _, ok := h.guard.require(c); !ok {
		return
	}

	admins, err := h.adminService.ListAdmins(c.Request.Context())
	if err != nil {
		LogAndRespondError(c, h.logger, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, admins)
}

// CreateAdmin godoc
// @Summary Create admin
// @Description Not available over HTTP; use the sitectl CLI.
// @Tags admin
// @Produce json
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 501 {object} ErrorResponse
// @Router /admin/admins [post]
func (h *AdminHandler) CreateAdmin(c *gin.Context) {
	if _, ok := h.guard.require(c); !ok {
		return
	}

	err := h.adminService.CreateAdmin(c.Request.Context())
	if err == nil {
		err = service.ErrUnsupported
	}
	respondServiceError(c, h.logger, err)
}

// DeleteAdmin godoc
// @Summary Revoke admin
// @Description Delete the role record of a principal. The account itself is kept.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body DeleteAdminRequest true "Profile id"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/admins [delete]
func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	access, ok := h.guard.require(c)
	if !ok {
		return
	}

	var req DeleteAdminRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	removed, err := h.adminService.RevokeAdmin(c.Request.Context(), req.ID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.logger.Info("admin access revoked",
		zap.String("actor", access.Principal.ID),
		zap.String("profile_id", req.ID),
		zap.Bool("removed", removed))

	message := "Admin access revoked"
	if !removed {
		message = "No admin profile found for id"
	}
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

// GetSetting godoc
// @Summary Get main title
// @Tags admin
// @Produce json
// @Success 200 {object} SettingResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/settings [get]
func (h *AdminHandler) GetSetting(c *gin.Context) {
	if _, ok := h.guard.require(c); !ok {
		return
	}

	value, err := h.adminService.GetSetting(c.Request.Context(), models.SettingMainTitle)
	if err != nil {
		LogAndRespondError(c, h.logger, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, SettingResponse{Value: value})
}

// UpdateSetting godoc
// @Summary Update main title
// @Tags admin
// @Accept json
// @Produce json
// @Param request body UpdateSettingRequest true "New value"
// @Success 200 {object} UpdateSettingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/settings [put]
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	if _, ok := h.guard.require(c); !ok {
		return
	}

	var req UpdateSettingRequest
	if !bindOptionalJSON(c, &req) {
		return
	}

	setting, err := h.adminService.UpdateSetting(c.Request.Context(), models.SettingMainTitle, req.Value)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, UpdateSettingResponse{Message: "Setting updated", Data: setting})
}

// bindOptionalJSON decodes the body, treating an empty body as an empty
// object so that field validation reports the missing field.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		RespondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
