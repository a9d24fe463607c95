package handler

import (
	"net/http"

	"approvalflow/internal/middleware"
	"approvalflow/internal/service"
	"approvalflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsService service.SettingsService
}

func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/settings", h.Get)
	router.PUT("/api/settings", h.Update)
}

// Get returns the effective workflow settings
// @Summary      Get settings
// @Tags         settings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.WorkflowSettings}
// @Router       /api/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	current, err := h.settingsService.Current(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, current))
}

// Update changes the provided settings (admin only)
// @Summary      Update settings
// @Tags         settings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.SettingsInput  true  "Partial settings"
// @Success      200   {object}  response.Response{data=service.Result}
// @Router       /api/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var in service.SettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	writeResult(c, http.StatusOK, h.settingsService.UpdateSettings(c.Request.Context(), middleware.ActorEmail(c), in))
}
