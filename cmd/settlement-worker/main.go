package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/results-service/ws"
	"github.com/radieske/lotto-bet-platform-poc/internal/settlement"
	"github.com/radieske/lotto-bet-platform-poc/internal/settlement/worker"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/cache"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/config"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/db"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/metrics"
	"github.com/radieske/lotto-bet-platform-poc/pkg/contracts/events"
)

func main() {
	cfg := config.Load("settlement-worker")

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer Kafka: eventos result_announced do admin-service
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicResultAnnounced, "settlement")
	defer reader.Close()

	// Producers: evento bet_settled + DLQ para anúncios que falharam
	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultAnnouncedDLQ)
	defer dlqWriter.Close()

	// Métricas Prometheus do pipeline de liquidação
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens consumidas"})
	settled := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_results_settled_total", Help: "resultados liquidados"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settled, errorsBy)

	engine := settlement.NewEngine(log, settlement.NewPostgres(pg))

	cons := &worker.Consumer{
		Log:        log,
		Reader:     reader,
		Engine:     engine,
		DLQ:        dlqWriter,
		OnConsumed: func() { consumed.Inc() },
		OnSettled:  func() { settled.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },

		// Após liquidar: publica bet_settled no Kafka e avisa os clientes
		// WebSocket do results-service via Redis Pub/Sub
		OnAfterSettle: func(ev events.BetSettled) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			b, _ := json.Marshal(ev)
			if err := kafka.WriteJSON(ctx, settledWriter, ev.ResultID, b); err != nil {
				log.Warn("bet_settled publish failed", zap.Error(err))
			}

			upd, _ := json.Marshal(ws.SettlementUpdate{LotteryType: ev.LotteryType, Payload: ev})
			if err := redisClient.Publish(ctx, cfg.RedisPubSubChannel, upd).Err(); err != nil {
				log.Warn("settlement broadcast failed", zap.Error(err))
			}
		},
	}

	metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return redisClient.Ping(ctx).Err()
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicResultAnnounced))
	if err := cons.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("consumer stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
