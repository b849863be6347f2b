package util

import (
	"errors"
	"net/http"

	"lingua_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// ValidationFailed 400，附带字段级错误
func ValidationFailed(c *gin.Context, verr *ValidationError) {
	c.JSON(http.StatusBadRequest, Response{
		Code:    http.StatusBadRequest,
		Message: "validation failed",
		Errors:  verr.Fields,
	})
}

// HandleServiceError 把服务层错误映射为 HTTP 响应，内部错误细节不返回给调用方
func HandleServiceError(c *gin.Context, err error) {
	if verr := AsValidationError(err); verr != nil {
		ValidationFailed(c, verr)
		return
	}
	switch {
	case errors.Is(err, ErrProgressNotFound), errors.Is(err, ErrPathNotFound), errors.Is(err, ErrUserNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrAlreadyEnrolled):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, ErrStorageUnavailable):
		Error(c, http.StatusServiceUnavailable, ErrStorageUnavailable.Error())
	default:
		LogInternalError(c, err)
	}
}
