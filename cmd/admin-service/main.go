package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	ahttp "github.com/radieske/lotto-bet-platform-poc/internal/admin-service/http"
	"github.com/radieske/lotto-bet-platform-poc/internal/admin-service/producer"
	arepo "github.com/radieske/lotto-bet-platform-poc/internal/admin-service/repo"
	"github.com/radieske/lotto-bet-platform-poc/internal/settlement"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/cache"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/config"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/db"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load("admin-service")

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: invalidação do cache de rates após edição
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Producer Kafka: anuncia resultados para o settlement-worker
	announceWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultAnnounced)
	defer announceWriter.Close()

	// Engine de liquidação síncrona (botão "processar" do back office)
	engine := settlement.NewEngine(log, settlement.NewPostgres(pg))

	api := ahttp.NewServer(log, arepo.NewPostgres(pg), engine, redisClient,
		cfg.AdminToken, producer.NewKafkaPublisher(announceWriter))

	metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}
	log.Info("admin-service listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}
