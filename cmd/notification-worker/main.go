package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/notification"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/config"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load("notification-worker")

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Consumer Kafka: eventos de carteira publicados pelo wallet-service
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicWalletEvents, "notification")
	defer reader.Close()

	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicWalletEventsDLQ)
	defer dlqWriter.Close()

	delivered := prometheus.NewCounter(prometheus.CounterOpts{Name: "notification_delivered_total", Help: "webhooks entregues"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "notification_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(delivered, errorsBy)

	w := &notification.Worker{
		Log:         log,
		Reader:      reader,
		Notifier:    notification.NewNotifier(cfg.NotifyWebhookURL),
		DLQ:         dlqWriter,
		OnDelivered: func() { delivered.Inc() },
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		return nil // sem dependências críticas além do Kafka, checado no loop
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("notification-worker started",
		zap.String("consume", cfg.TopicWalletEvents),
		zap.String("webhook", cfg.NotifyWebhookURL))
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("worker stopped with error", zap.Error(err))
	}
	log.Info("notification-worker stopped")
}
