package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/shared/config"
	"github.com/radieske/lotto-bet-platform-poc/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func main() {
	cfg := config.Load("api-gateway")
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	// targets
	lottoURL := getEnv("LOTTO_URL", "http://localhost:8080")
	resultsURL := getEnv("RESULTS_URL", "http://localhost:8081")
	walletURL := getEnv("WALLET_URL", "http://localhost:8082")
	adminURL := getEnv("ADMIN_URL", "http://localhost:8084")

	lotto := rp(lottoURL)
	results := rp(resultsURL)
	wallet := rp(walletURL)
	admin := rp(adminURL)

	mux := http.NewServeMux()

	// apostas e autenticação (ex.: /api/lotto/v1/bets -> lotto-service)
	mux.Handle("/api/lotto/", http.StripPrefix("/api/lotto", lotto))

	// resultados públicos e feed WebSocket (ex.: /api/results/ws)
	mux.Handle("/api/results/", http.StripPrefix("/api/results", results))

	// carteira (ex.: /api/wallet/deposit -> wallet-service)
	mux.Handle("/api/wallet/", http.StripPrefix("/api/wallet", wallet))

	// back office (ex.: /api/admin/v1/results -> admin-service)
	mux.Handle("/api/admin/", http.StripPrefix("/api/admin", admin))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Token")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}
