package main

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/affiliate"
	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/auth"
	lhttp "github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/http"
	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/rates"
	lrepo "github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/repo"
	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/service"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/cache"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/config"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/db"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/logger"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load("lotto-service")

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Postgres: usuários, apostas, bloqueios, limites
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: cache de rates
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	repo := lrepo.NewPostgres(pg)
	rateSource := rates.NewSource(pg, redisClient, 60*time.Second)
	commission := affiliate.NewDistributor(log, affiliate.NewPostgres(pg))
	placer := service.NewPlacer(log, rateSource, repo, repo, commission)
	am := auth.NewManager(cfg.JWTSecret, 24*time.Hour)

	api := lhttp.NewServer(log, am, placer, repo, rateSource)

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
	log.Info("lotto-service listening", zap.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}
