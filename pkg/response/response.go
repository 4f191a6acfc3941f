package response

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

const (
	CodeSuccess    = 0
	CodeBadRequest = 40000
	CodeValidation = 40001
	CodeNotFound   = 40400
	CodeTooMany    = 42900
	CodeInternal   = 50000
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeSuccess, Message: "success", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: msg})
}

// ValidationFailed 表单校验失败：带上已提交的数据与逐字段错误
func ValidationFailed(c *gin.Context, data interface{}, errs map[string]string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeValidation, Message: "validation failed", Data: data, Errors: errs})
}

func NotFound(c *gin.Context, msg string) {
	if msg == "" {
		msg = "not found"
	}
	c.JSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: msg})
}

func TooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Response{Code: CodeTooMany, Message: "too many requests"})
}

// InternalError 记录并上报错误，不向客户端泄露细节
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	c.JSON(http.StatusInternalServerError, Response{Code: CodeInternal, Message: "internal server error"})
}
