package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/radieske/lotto-bet-platform-poc/internal/results-service/cache"
	"github.com/radieske/lotto-bet-platform-poc/internal/results-service/dto"
	"github.com/radieske/lotto-bet-platform-poc/internal/results-service/repo"
)

const defaultHistoryLimit = 30

// API expõe os endpoints públicos de consulta de resultados.
// Leitura direto do Postgres com cache Redis para o resultado por data.
type API struct {
	ReadRepo *repo.ReadRepo
	Cache    *cache.Cache
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/lotteries", a.listLotteries)                       // tipos de loteria com resultado publicado
	r.Get("/v1/lotteries/{lotteryType}/results", a.listResults)   // histórico de resultados
	r.Get("/v1/lotteries/{lotteryType}/results/{date}", a.getOne) // resultado de uma data
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) listLotteries(w http.ResponseWriter, r *http.Request) {
	lts, err := a.ReadRepo.ListLotteryTypes(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, lts)
}

func (a *API) listResults(w http.ResponseWriter, r *http.Request) {
	lt := chi.URLParam(r, "lotteryType")
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	results, err := a.ReadRepo.ListResults(r.Context(), lt, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// getOne retorna o resultado de uma data, preferencialmente do cache.
func (a *API) getOne(w http.ResponseWriter, r *http.Request) {
	lt := chi.URLParam(r, "lotteryType")
	date := chi.URLParam(r, "date")

	var fromCache dto.Result
	if ok, _ := a.Cache.GetResult(r.Context(), lt, date, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	res, err := a.ReadRepo.GetResult(r.Context(), lt, date)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// resultados publicados são imutáveis, TTL longo
	_ = a.Cache.SetResult(r.Context(), lt, date, res, 10*time.Minute)
	writeJSON(w, http.StatusOK, res)
}
