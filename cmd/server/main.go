package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/gradenotify/internal/bootstrap"
	"anoa.com/gradenotify/internal/config"
	notiKafka "anoa.com/gradenotify/internal/modules/notification/delivery/kafka"
	"anoa.com/gradenotify/internal/server"
	"anoa.com/gradenotify/pkg/database"
	pkglogger "anoa.com/gradenotify/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := pkglogger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, database.Postgres(cfg.DatabaseURL), database.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		logger.Fatal("Failed to seed roles", zap.Error(err))
	}

	redisClient := connectRedis(ctx, cfg.RedisURL, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv := server.NewServer(cfg, db, redisClient, logger)

	var consumer *notiKafka.Consumer
	if cfg.KafkaEnabled {
		consumer = notiKafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, srv.NotificationService(), logger)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("Kafka consumer stopped", zap.Error(err))
			}
		}()
		logger.Info("Initialized Kafka consumer",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("Failed to close Kafka consumer", zap.Error(err))
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server exited properly")
}

// connectRedis returns nil when no URL is configured or the server cannot
// be reached; notifications are then stored without being announced.
func connectRedis(ctx context.Context, url string, logger *zap.Logger) *redis.Client {
	if url == "" {
		logger.Warn("REDIS_URL not set, notification announcements disabled")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("Invalid REDIS_URL, notification announcements disabled", zap.Error(err))
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, notification announcements disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}

	logger.Info("Connected to Redis")
	return client
}
