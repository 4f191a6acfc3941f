package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/logger"
)

const currentUserKey = "current_user"

// Identify 从会话 cookie 或 Bearer 头解析当前用户；无效令牌按匿名处理
func Identify(tokens *auth.TokenManager, accounts service.AccountService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw, _ = c.Cookie(cookieName)
		}
		if raw == "" {
			c.Next()
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			c.Next()
			return
		}
		id, err := claims.UserID()
		if err != nil {
			c.Next()
			return
		}
		u, err := accounts.Get(c.Request.Context(), id)
		if err != nil {
			logger.Debug("session user not resolved", zap.Uint("user_id", id), zap.Error(err))
			c.Next()
			return
		}
		c.Set(currentUserKey, u)
		c.Next()
	}
}

func bearerToken(h string) string {
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// CurrentUser 当前已认证用户
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}

// LoginRequired 匿名请求重定向到登录页，next 为原始请求地址
func LoginRequired(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginRedirectURL(loginURL, c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoginRedirectURL 与 /auth/login/?next=/create/ 的格式保持一致：路径分隔符不转义
func LoginRedirectURL(loginURL, next string) string {
	q := url.Values{"next": {next}}.Encode()
	return loginURL + "?" + strings.ReplaceAll(q, "%2F", "/")
}
