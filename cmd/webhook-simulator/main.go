package main

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/shared/config"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/metrics"
	"github.com/radieske/lotto-bet-platform-poc/pkg/contracts/events"
)

var (
	hooksReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_sim_hooks_received_total",
		Help: "Webhooks recebidos por tipo de evento",
	}, []string{"type"})
	hooksRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "webhook_sim_hooks_rejected_total",
		Help: "Webhooks rejeitados (falha simulada)",
	})
)

// Simulador do sistema externo que recebe notificações de carteira.
// WEBHOOK_FAIL_PCT injeta falhas pra exercitar retry e DLQ do
// notification-worker.
func main() {
	cfg := config.Load("webhook-simulator")

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	failPct := 0
	if v := os.Getenv("WEBHOOK_FAIL_PCT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 100 {
			failPct = n
		}
	}

	prometheus.MustRegister(hooksReceived, hooksRejected)
	metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error { return nil })

	mux := http.NewServeMux()
	mux.HandleFunc("/hook", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var ev events.WalletEvent
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if rand.Intn(100) < failPct {
			hooksRejected.Inc()
			log.Warn("simulated failure", zap.String("transactionId", ev.TransactionID))
			http.Error(w, "simulated outage", http.StatusInternalServerError)
			return
		}

		hooksReceived.WithLabelValues(ev.Type).Inc()
		log.Info("hook received",
			zap.String("transactionId", ev.TransactionID),
			zap.String("userId", ev.UserID),
			zap.String("type", ev.Type),
			zap.Int64("amount_cents", ev.AmountCents))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"received"}`))
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: mux,
	}
	log.Info("webhook-simulator listening", zap.String("addr", srv.Addr), zap.Int("fail_pct", failPct))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}
