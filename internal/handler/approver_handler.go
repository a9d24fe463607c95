package handler

import (
	"net/http"

	"approvalflow/internal/middleware"
	"approvalflow/internal/service"
	"approvalflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApproverHandler struct {
	approverService service.ApproverService
}

func NewApproverHandler(approverService service.ApproverService) *ApproverHandler {
	return &ApproverHandler{approverService: approverService}
}

func (h *ApproverHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvers := router.Group("/api/approvers")
	{
		approvers.GET("", h.ListApprovers)
		approvers.POST("", h.AddApprover)
		approvers.PUT("/:email", h.UpdateApprover)
		approvers.DELETE("/:email", h.DeleteApprover)
	}
}

// ListApprovers returns the roster in roster order
// @Summary      List approvers
// @Tags         approvers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Approver}
// @Router       /api/approvers [get]
func (h *ApproverHandler) ListApprovers(c *gin.Context) {
	roster, err := h.approverService.ListApprovers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roster))
}

// AddApprover adds a roster row (admin only)
// @Summary      Add approver
// @Tags         approvers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.ApproverInput  true  "Roster row"
// @Success      201   {object}  response.Response{data=service.Result}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /api/approvers [post]
func (h *ApproverHandler) AddApprover(c *gin.Context) {
	var in service.ApproverInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	res := h.approverService.ManageApprover(c.Request.Context(), middleware.ActorEmail(c), service.ManageAdd, in)
	writeResult(c, http.StatusCreated, res)
}

// UpdateApprover replaces a roster row (admin only)
// @Summary      Update approver
// @Tags         approvers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        email  path      string                 true  "Approver email"
// @Param        body   body      service.ApproverInput  true  "Roster row"
// @Success      200    {object}  response.Response{data=service.Result}
// @Failure      404    {object}  response.Response
// @Router       /api/approvers/{email} [put]
func (h *ApproverHandler) UpdateApprover(c *gin.Context) {
	var in service.ApproverInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	in.Email = c.Param("email")
	res := h.approverService.ManageApprover(c.Request.Context(), middleware.ActorEmail(c), service.ManageUpdate, in)
	writeResult(c, http.StatusOK, res)
}

// DeleteApprover removes a roster row (admin only)
// @Summary      Delete approver
// @Tags         approvers
// @Security     BearerAuth
// @Produce      json
// @Param        email  path      string  true  "Approver email"
// @Success      200    {object}  response.Response{data=service.Result}
// @Failure      404    {object}  response.Response
// @Router       /api/approvers/{email} [delete]
func (h *ApproverHandler) DeleteApprover(c *gin.Context) {
	res := h.approverService.ManageApprover(c.Request.Context(), middleware.ActorEmail(c), service.ManageDelete,
		service.ApproverInput{Email: c.Param("email")})
	writeResult(c, http.StatusOK, res)
}
