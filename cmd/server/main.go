package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"byteneko/internal/cache"
	"byteneko/internal/config"
	"byteneko/internal/repository"
	"byteneko/internal/service"
	"byteneko/internal/transport/rest"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("mongodb connect failed", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("mongodb ping failed", zap.Error(err))
	}
	logger.Info("connected to mongodb", zap.String("db", cfg.MongoDB))

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisAddr
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Fatal("redis ping failed", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", redisAddr))

	// Repositories
	surveyRepo := repository.NewSurveyRepo(db)
	questionRepo := repository.NewQuestionRepo(db)
	responseRepo := repository.NewResponseRepo(db)

	// Caches
	reportCache := cache.NewReportCache(rdb, cfg.CacheTTL)

	// Services
	surveySvc := service.NewSurveyService(surveyRepo, questionRepo, responseRepo, reportCache, logger)
	analysisSvc := service.NewAnalysisService(questionRepo, responseRepo, reportCache, service.NoopChartRenderer{}, cfg, logger)

	container := &rest.Container{
		SurveyService:   surveySvc,
		AnalysisService: analysisSvc,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen and serve", zap.Error(err))
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
}
