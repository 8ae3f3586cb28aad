package handlers

import (
	"net/http"
	"time"

	"github.com/GunarsK-portfolio/artist-site/internal/models"
	"github.com/GunarsK-portfolio/artist-site/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListEvents godoc
// @Summary List all events
// @Tags admin
// @Produce json
// @Success 200 {array} models.Event
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/events [get]
func (h *AdminHandler) ListEvents(c *gin.Context) {
	if _, ok := h.guard.require(c); !ok {
		return
	}

	events, err := h.adminService.ListEvents(c.Request.Context())
	if err != nil {
		LogAndRespondError(c, h.logger, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// CreateEvent godoc
// @Summary Create event
// @Tags admin
// @Accept json
// @Produce json
// @Param request body service.EventInput true "Event"
// @Success 201 {object} models.Event
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/events [post]
func (h *AdminHandler) CreateEvent(c *gin.Context) {
	if _, ok := h.guard.require(c); !ok {
		return
	}

	var input service.EventInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	event, err := h.adminService.CreateEvent(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update event
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Event id"
// @Param request body service.EventInput true "Event"
// @Success 200 {object} models.Event
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/events/{id} [put]
func (h *AdminHandler) UpdateEvent(c *gin.Context) {
	if _, ok := h.guard.require(c); !ok {
		return
	}

	var input service.EventInput
	if !bindOptionalJSON(c, &input) {
		return
	}

	event, err := h.adminService.UpdateEvent(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete event
// @Tags admin
// @Produce json
// @Param id path string true "Event id"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/events/{id} [delete]
func (h *AdminHandler) DeleteEvent(c *gin.Context) {
	if _, ok := h.guard.require(c); !ok {
		return
	}

	if err := h.adminService.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Event deleted"})
}

// PublicHandler serves unauthenticated read-only content.
type PublicHandler struct {
	adminService service.AdminService
	logger       *zap.Logger
	now          func() time.Time
}

// NewPublicHandler creates a new PublicHandler instance.
func NewPublicHandler(adminService service.AdminService, logger *zap.Logger) *PublicHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicHandler{adminService: adminService, logger: logger, now: time.Now}
}

// UpcomingEvents godoc
// @Summary Upcoming events
// @Tags public
// @Produce json
// @Success 200 {array} models.Event
// @Failure 500 {object} ErrorResponse
// @Router /events [get]
func (h *PublicHandler) UpcomingEvents(c *gin.Context) {
	events, err := h.adminService.ListUpcomingEvents(c.Request.Context(), h.now())
	if err != nil {
		LogAndRespondError(c, h.logger, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// MainTitle godoc
// @Summary Site headline
// @Tags public
// @Produce json
// @Success 200 {object} SettingResponse
// @Failure 404 {object} ErrorResponse
// @Router /settings/main_title [get]
func (h *PublicHandler) MainTitle(c *gin.Context) {
	value, err := h.adminService.GetSetting(c.Request.Context(), models.SettingMainTitle)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SettingResponse{Value: value})
}
