package handler

import (
	"net/http"

	"approvalflow/internal/apperror"
	"approvalflow/internal/service"
	"approvalflow/pkg/response"

	"github.com/gin-gonic/gin"
)

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindAuthorization:
		return http.StatusForbidden
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConfiguration:
		return http.StatusUnprocessableEntity
	case apperror.KindBusy:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeResult renders a mutation result; successCode is used when it succeeded.
func writeResult(c *gin.Context, successCode int, res service.Result) {
	if res.OK() {
		c.JSON(successCode, response.Success(successCode, res))
		return
	}
	code := statusFor(res.Kind)
	c.JSON(code, response.ErrorKind(code, string(res.Kind), res.Message))
}

func writeError(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	code := statusFor(kind)
	_ = c.Error(err)
	c.JSON(code, response.ErrorKind(code, string(kind), apperror.Message(err)))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorKind(http.StatusBadRequest, string(apperror.KindValidation), "Invalid request body: "+err.Error()))
}
