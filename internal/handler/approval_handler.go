package handler

import (
	"encoding/json"
	"net/http"

	"approvalflow/internal/middleware"
	"approvalflow/internal/service"
	"approvalflow/pkg/pagination"
	"approvalflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", h.Submit)
		requests.GET("/mine", h.ListMyRequests)
		requests.GET("/:id", h.GetRequest)
		requests.POST("/:id/actions", h.ProcessApproval)
	}
	router.GET("/api/approvals", h.ListApprovals)
	router.GET("/api/dashboard", h.Dashboard)
}

// SubmitRequestBody is the submission payload; the requester is the caller.
type SubmitRequestBody struct {
	FormType      string          `json:"form_type" binding:"required"`
	RequesterName string          `json:"requester_name"`
	Department    string          `json:"department" binding:"required"`
	SubDepartment string          `json:"sub_department"`
	Details       json.RawMessage `json:"details" swaggertype:"object"`
}

// ActionBody is the payload of an approval decision.
type ActionBody struct {
	Action            string          `json:"action" binding:"required"`
	Notes             string          `json:"notes"`
	NextApproverEmail string          `json:"next_approver_email"`
	ITReviewData      json.RawMessage `json:"it_review_data,omitempty" swaggertype:"object"`
}

// Submit creates a request routed to the department's approver
// @Summary      Submit a request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      SubmitRequestBody  true  "Request draft"
// @Success      201   {object}  response.Response{data=service.Result}
// @Failure      400   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Router       /api/requests [post]
func (h *ApprovalHandler) Submit(c *gin.Context) {
	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	name := body.RequesterName
	if name == "" {
		name = middleware.ActorName(c)
	}

	res := h.approvalService.Submit(c.Request.Context(), service.SubmitRequest{
		FormType:       body.FormType,
		RequesterName:  name,
		RequesterEmail: middleware.ActorEmail(c),
		Department:     body.Department,
		SubDepartment:  body.SubDepartment,
		Details:        body.Details,
	})
	writeResult(c, http.StatusCreated, res)
}

// ProcessApproval applies Approve, Reject or Forward as the caller
// @Summary      Act on a request
// @Tags         requests
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path      string      true  "Request ID"
// @Param        body  body      ActionBody  true  "Decision"
// @Success      200   {object}  response.Response{data=service.Result}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      422   {object}  response.Response
// @Failure      503   {object}  response.Response
// @Router       /api/requests/{id}/actions [post]
func (h *ApprovalHandler) ProcessApproval(c *gin.Context) {
	var body ActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	res := h.approvalService.ProcessApproval(c.Request.Context(), service.ProcessRequest{
		RequestID:         c.Param("id"),
		Action:            body.Action,
		Notes:             body.Notes,
		NextApproverEmail: body.NextApproverEmail,
		ITReviewData:      body.ITReviewData,
		Actor:             middleware.ActorEmail(c),
	})
	writeResult(c, http.StatusOK, res)
}

// ListApprovals returns the open requests awaiting the caller, plus those
// visible through VP division access
// @Summary      List my approval queue
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.RequestView}
// @Router       /api/approvals [get]
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	views, err := h.approvalService.ListApprovals(c.Request.Context(), middleware.ActorEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, views))
}

// ListMyRequests pages through the caller's own requests
// @Summary      List my requests
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        page       query     int  false  "Page number (default 1)"
// @Param        page_size  query     int  false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=service.Page}
// @Router       /api/requests/mine [get]
func (h *ApprovalHandler) ListMyRequests(c *gin.Context) {
	p := pagination.Parse(c)
	page, err := h.approvalService.ListMyRequests(c.Request.Context(), middleware.ActorEmail(c), p.Page, p.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, page))
}

// GetRequest returns one request if the caller may see it
// @Summary      Get a request
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Request ID"
// @Success      200  {object}  response.Response{data=service.RequestView}
// @Failure      404  {object}  response.Response
// @Router       /api/requests/{id} [get]
func (h *ApprovalHandler) GetRequest(c *gin.Context) {
	view, err := h.approvalService.GetRequest(c.Request.Context(), c.Param("id"), middleware.ActorEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// Dashboard summarizes the caller's requests and queue
// @Summary      Dashboard counters
// @Tags         requests
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.Dashboard}
// @Router       /api/dashboard [get]
func (h *ApprovalHandler) Dashboard(c *gin.Context) {
	d, err := h.approvalService.Dashboard(c.Request.Context(), middleware.ActorEmail(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, d))
}
