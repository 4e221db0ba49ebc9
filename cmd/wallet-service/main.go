package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/shared/config"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/db"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/metrics"
	whttp "github.com/radieske/lotto-bet-platform-poc/internal/wallet-service/http"
	"github.com/radieske/lotto-bet-platform-poc/internal/wallet-service/producer"
	wrepo "github.com/radieske/lotto-bet-platform-poc/internal/wallet-service/repo"
)

func main() {
	cfg := config.Load("wallet-service")

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Postgres: saldos e ledger de transações
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Producer Kafka: eventos de depósito/saque para o notification-worker
	walletWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWalletEvents)
	defer walletWriter.Close()

	repo := wrepo.NewPostgres(pg)
	api := whttp.NewServer(log, repo, cfg.AdminToken, producer.NewKafkaPublisher(walletWriter))

	metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}
	log.Info("wallet-service listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}
