package api

import (
	"errors"
	"net/http"

	"github.com/AlexMickh/speak-messenger/internal/errs"
	"github.com/AlexMickh/speak-messenger/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the error taxonomy onto status codes. Classified
// errors surface their message verbatim, everything else becomes an
// opaque 500.
func respondError(c *gin.Context, err error) {
	var e *errs.Error
	if errors.As(err, &e) {
		c.JSON(statusOf(e.Kind), gin.H{"error": e.Msg})
		return
	}

	ctx := c.Request.Context()
	logger.GetFromCtx(ctx).Error(ctx, "request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func statusOf(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
