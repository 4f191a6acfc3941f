package api

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/yatube/config"
	_ "github.com/d60-Lab/yatube/docs"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/middleware"
	"github.com/d60-Lab/yatube/pkg/metrics"
)

// NewRouter 组装中间件与路由。identify 负责把会话解析为当前用户
func NewRouter(cfg *config.Config, h *handler.Handler, identify gin.HandlerFunc) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	if cfg.Sentry.DSN != "" {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger())
	r.Use(metrics.Middleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
	}
	r.Use(identify)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Static(cfg.Media.URLPrefix, cfg.Media.Root)

	// 公开页面
	r.GET("/", h.Index)
	r.GET("/group/:slug/", h.GroupPosts)
	r.GET("/profile/:username/", h.Profile)
	r.GET("/posts/:post_id/", h.PostDetail)

	// 需要登录
	authed := r.Group("/", middleware.LoginRequired(cfg.Auth.LoginURL))
	{
		authed.GET("/create/", h.PostCreate)
		authed.POST("/create/", h.PostCreate)
		authed.GET("/posts/:post_id/edit/", h.PostEdit)
		authed.POST("/posts/:post_id/edit/", h.PostEdit)
		authed.GET("/posts/:post_id/comment/", h.AddComment)
		authed.POST("/posts/:post_id/comment/", h.AddComment)
		authed.GET("/follow/", h.FollowIndex)
		authed.GET("/profile/:username/follow/", h.ProfileFollow)
		authed.POST("/profile/:username/follow/", h.ProfileFollow)
		authed.GET("/profile/:username/unfollow/", h.ProfileUnfollow)
		authed.POST("/profile/:username/unfollow/", h.ProfileUnfollow)
	}

	account := r.Group("/auth")
	{
		account.GET("/login/", h.Login)
		account.POST("/login/", h.Login)
		account.POST("/signup/", h.Signup)
		account.GET("/logout/", h.Logout)
		account.POST("/logout/", h.Logout)
	}

	return r
}
