package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

// Handler 聚合所有 HTTP 处理函数的依赖
type Handler struct {
	postService    service.PostService
	commentService service.CommentService
	relService     service.RelationshipService
	accountService service.AccountService
	groups         form.GroupLookup
	tokens         *auth.TokenManager
	feedCache      cache.FeedCache
	feedTTL        time.Duration
	authCfg        config.AuthConfig
	maxImageBytes  int64
}

// Deps 构造 Handler 所需依赖
type Deps struct {
	PostService    service.PostService
	CommentService service.CommentService
	RelService     service.RelationshipService
	AccountService service.AccountService
	Groups         form.GroupLookup
	Tokens         *auth.TokenManager
	FeedCache      cache.FeedCache
}

func New(cfg *config.Config, d Deps) *Handler {
	return &Handler{
		postService:    d.PostService,
		commentService: d.CommentService,
		relService:     d.RelService,
		accountService: d.AccountService,
		groups:         d.Groups,
		tokens:         d.Tokens,
		feedCache:      d.FeedCache,
		feedTTL:        cfg.Cache.FeedTTL,
		authCfg:        cfg.Auth,
		maxImageBytes:  cfg.Media.MaxBytes,
	}
}

// pageParam 非法页码按第一页处理
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func postIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// fail 把领域错误映射为响应
func fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		response.NotFound(c, "")
		return
	}
	response.InternalError(c, err)
}
