package handlers

import (
	"errors"

	"github.com/resys-shop/core/internal/http/response"
	"github.com/resys-shop/core/internal/logger"
	"github.com/resys-shop/core/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requestLog 提供携带 request_id 的日志实例
func requestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.S().With("request_id", id)
		}
	}
	return logger.S()
}

// respondError 返回错误响应，并在有原始错误时记录日志
func respondError(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		requestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// respondServiceError 按业务错误类别映射响应码；多字段校验错误附带字段明细
func respondServiceError(c *gin.Context, err error) {
	var fieldErrs *service.ValidationErrors
	if errors.As(err, &fieldErrs) {
		response.ErrorWithData(c, response.CodeBadRequest, fieldErrs.Error(), gin.H{"fields": fieldErrs.Fields})
		return
	}
	switch service.KindOf(err) {
	case service.KindValidation:
		response.BadRequest(c, err.Error())
	case service.KindConflict:
		response.Conflict(c, err.Error())
	case service.KindNotFound:
		response.NotFound(c, err.Error())
	default:
		respondError(c, response.CodeInternal, "内部错误", err)
	}
}
