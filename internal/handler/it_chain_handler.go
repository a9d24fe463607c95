package handler

import (
	"net/http"

	"approvalflow/internal/middleware"
	"approvalflow/internal/service"
	"approvalflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type ITChainHandler struct {
	chainService service.ITChainService
}

func NewITChainHandler(chainService service.ITChainService) *ITChainHandler {
	return &ITChainHandler{chainService: chainService}
}

func (h *ITChainHandler) RegisterRoutes(router *gin.RouterGroup) {
	chains := router.Group("/api/it-review-chains")
	{
		chains.GET("", h.List)
		chains.POST("", h.Add)
		chains.PUT("/:formId", h.Update)
		chains.DELETE("/:formId", h.Delete)
	}
}

// List returns every configured IT review chain
// @Summary      List IT review chains
// @Tags         it-review-chains
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.ITReviewChain}
// @Router       /api/it-review-chains [get]
func (h *ITChainHandler) List(c *gin.Context) {
	chains, err := h.chainService.ListITReviewChains(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, chains))
}

// Add configures the chain for a form (admin only)
// @Summary      Add IT review chain
// @Tags         it-review-chains
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      service.ITChainInput  true  "Chain"
// @Success      201   {object}  response.Response{data=service.Result}
// @Router       /api/it-review-chains [post]
func (h *ITChainHandler) Add(c *gin.Context) {
	var in service.ITChainInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	writeResult(c, http.StatusCreated, h.chainService.ManageITReviewChain(c.Request.Context(), middleware.ActorEmail(c), service.ManageAdd, in))
}

// Update replaces the chain for a form (admin only)
// @Summary      Update IT review chain
// @Tags         it-review-chains
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        formId  path      string                true  "Numeric form id"
// @Param        body    body      service.ITChainInput  true  "Chain"
// @Success      200     {object}  response.Response{data=service.Result}
// @Router       /api/it-review-chains/{formId} [put]
func (h *ITChainHandler) Update(c *gin.Context) {
	var in service.ITChainInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	in.FormID = c.Param("formId")
	writeResult(c, http.StatusOK, h.chainService.ManageITReviewChain(c.Request.Context(), middleware.ActorEmail(c), service.ManageUpdate, in))
}

// Delete removes the chain for a form (admin only)
// @Summary      Delete IT review chain
// @Tags         it-review-chains
// @Security     BearerAuth
// @Produce      json
// @Param        formId  path      string  true  "Numeric form id"
// @Success      200     {object}  response.Response{data=service.Result}
// @Router       /api/it-review-chains/{formId} [delete]
func (h *ITChainHandler) Delete(c *gin.Context) {
	in := service.ITChainInput{FormID: c.Param("formId")}
	writeResult(c, http.StatusOK, h.chainService.ManageITReviewChain(c.Request.Context(), middleware.ActorEmail(c), service.ManageDelete, in))
}
