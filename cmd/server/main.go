package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/api"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/middleware"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/internal/storage"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/pkg/logger"
	"github.com/d60-Lab/yatube/pkg/redis"
	"github.com/d60-Lab/yatube/pkg/tracing"
)

// @title       Yatube API
// @version     1.0
// @description Posts, groups, comments and follows.
// @BasePath    /
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}
	if err := model.AutoMigrate(db); err != nil {
		logger.Fatal("migrate failed", zap.Error(err))
	}

	var feedCache cache.FeedCache = cache.NewMemoryFeedCache()
	if cfg.Redis.Enabled() {
		client, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("redis connect failed", zap.Error(err))
		}
		defer client.Close()
		feedCache = cache.NewRedisFeedCache(client)
	}

	// repositories
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)

	// services
	relSvc := service.NewRelationshipService(followRepo)
	accountSvc := service.NewAccountService(userRepo)
	postSvc := service.NewPostService(postRepo, commentRepo, groupRepo, userRepo, relSvc,
		storage.NewLocalImageStore(cfg.Media.Root), cfg.App.PageSize)
	commentSvc := service.NewCommentService(postRepo, commentRepo)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	h := handler.New(cfg, handler.Deps{
		PostService:    postSvc,
		CommentService: commentSvc,
		RelService:     relSvc,
		AccountService: accountSvc,
		Groups:         groupRepo,
		Tokens:         tokens,
		FeedCache:      feedCache,
	})
	router := api.NewRouter(cfg, h, middleware.Identify(tokens, accountSvc, cfg.Auth.CookieName))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	sentry.Flush(2 * time.Second)
	if err := database.Close(db); err != nil {
		logger.Warn("database close", zap.Error(err))
	}
}
