package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"contest-engine-backend/docs"
	accountcache "contest-engine-backend/internal/cache/redis"
	"contest-engine-backend/internal/common/config"
	"contest-engine-backend/internal/common/logger"
	"contest-engine-backend/internal/common/middleware"
	contesthttp "contest-engine-backend/internal/features/contest/delivery/http"
	contestpg "contest-engine-backend/internal/features/contest/repository/postgres"
	"contest-engine-backend/internal/features/contest/service"
	"contest-engine-backend/internal/platform/db"
	"contest-engine-backend/internal/platform/redis"
	"contest-engine-backend/internal/platform/scheduler"
	"contest-engine-backend/internal/platform/vk"
)

// @title           Contest Engine API
// @version         1.0
// @description     Automation backend for promo-code giveaway contests on VK: cyclic contest lifecycle, participant collection, winner selection and prize delivery.

// @host      localhost:8080
// @BasePath  /api/v1

// @tag.name contests
// @tag.description Contest configuration management

// @tag.name cycles
// @tag.description Cycle lifecycle - synchronization, collection and finalization

// @tag.name entries
// @tag.description Participant entries of the open cycle

// @tag.name promo-codes
// @tag.description Prize pool management

// @tag.name blacklist
// @tag.description Per-project participant bans

// @tag.name delivery
// @tag.description Prize delivery log and retries

// @tag.name callbacks
// @tag.description Callbacks invoked by the scheduling tracker

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger.Init("contest-engine-backend", cfg.Debug)

	logger.Info().Bool("debug", cfg.Debug).Msg("Starting contest engine")

	database, err := db.Connect(cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to postgres")
	}
	defer database.Close()

	if err := database.Migrate(contestpg.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info().Msg("Database ready")

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisClient, err := redis.Open(ctx, redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer redisClient.Close()

	vkClient := vk.NewClient(
		cfg.VK.BaseURL,
		cfg.VK.Version,
		cfg.VK.Token,
		time.Duration(cfg.VK.TimeoutSeconds)*time.Second,
	)
	accountCache := accountcache.NewAccountCache(
		redisClient,
		time.Duration(cfg.Contest.AccountCacheTTLMin)*time.Minute,
		vkClient.ResolveAccount,
	)
	schedulerClient := scheduler.NewClient(
		cfg.Scheduler.BaseURL,
		time.Duration(cfg.Scheduler.TimeoutSeconds)*time.Second,
	)

	store := contestpg.NewRepository(database.DB)
	if err := store.EnsureIndexes(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create database indexes")
	}
	locker := service.NewRedisLocker(redisClient)

	contestSvc := service.NewContestService(store)
	syncSvc := service.NewSyncService(store, store, schedulerClient, locker,
		time.Duration(cfg.Contest.DefaultFinishHours)*time.Hour)
	collectorSvc := service.NewCollectorService(store, store, store, vkClient, cfg.VK.ReactionFetchLimit)
	finalizeSvc := service.NewFinalizeService(store, vkClient, schedulerClient, collectorSvc, syncSvc, locker,
		time.Duration(cfg.Contest.DefaultRestartHours)*time.Hour)
	retrySvc := service.NewRetryService(store, vkClient)

	logger.Info().Msg("Services initialized")

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Errors())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, contestSvc, syncSvc, collectorSvc, finalizeSvc, retrySvc, accountCache, cfg.VK.Token, database, redisClient)

	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func setupRoutes(
	router *gin.Engine,
	contests *service.ContestService,
	sync *service.SyncService,
	collector *service.CollectorService,
	finalizer *service.FinalizeService,
	retrier *service.RetryService,
	accounts *accountcache.AccountCache,
	vkToken string,
	database *db.Postgres,
	redisClient *redis.Client,
) {
	v1 := router.Group("/api/v1")

	handler := contesthttp.NewContestHandler(contests, sync, collector, finalizer, retrier)
	handler.RegisterRoutes(v1)

	// Acting platform account behind the configured token, cached in Redis.
	v1.GET("/account", func(c *gin.Context) {
		account, err := accounts.Get(c.Request.Context(), vkToken)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, account)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "contest-engine-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := database.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "postgres unavailable",
				"details": err.Error(),
			})
			return
		}

		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   "contest-engine-backend",
		})
	})
}
