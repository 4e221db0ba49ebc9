package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/admin-service/dto"
	"github.com/radieske/lotto-bet-platform-poc/internal/admin-service/repo"
	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/rates"
	"github.com/radieske/lotto-bet-platform-poc/internal/settlement"
	"github.com/radieske/lotto-bet-platform-poc/pkg/contracts/events"
	"github.com/radieske/lotto-bet-platform-poc/pkg/lottery"
)

// Server expõe o back office: resultados, liquidação, rates, bloqueios
// e limites. Tudo atrás do token administrativo.
type Server struct {
	log    *zap.Logger
	repo   *repo.Postgres
	engine *settlement.Engine
	rdb    *redis.Client
	token  string
	publ   interface {
		PublishResultAnnounced(context.Context, events.ResultAnnounced) error
	}
}

func NewServer(log *zap.Logger, r *repo.Postgres, engine *settlement.Engine, rdb *redis.Client, token string, publ interface {
	PublishResultAnnounced(context.Context, events.ResultAnnounced) error
}) *Server {
	return &Server{log: log, repo: r, engine: engine, rdb: rdb, token: token, publ: publ}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requireToken)

	r.Post("/v1/results", s.createResult)
	r.Get("/v1/results", s.listResults)
	r.Post("/v1/results/{id}/announce", s.announceResult)
	r.Post("/v1/results/{id}/process", s.processResult)
	r.Get("/v1/results/{id}/error-bets", s.errorBets)

	r.Put("/v1/rates/{betType}", s.upsertRate)

	r.Post("/v1/blocked-numbers", s.createBlockedNumber)
	r.Delete("/v1/blocked-numbers/{id}", s.deactivateBlockedNumber)

	r.Post("/v1/bet-limits", s.createBetLimit)
	r.Delete("/v1/bet-limits/{id}", s.deactivateBetLimit)

	return r
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Admin-Token") != s.token {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createResult(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// campos "top" derivam do primeiro prêmio quando omitidos
	if req.ThreeDigitTop == "" {
		req.ThreeDigitTop = req.FirstPrize[3:]
	}
	if req.TwoDigitTop == "" {
		req.TwoDigitTop = req.FirstPrize[4:]
	}

	id, err := s.repo.CreateResult(r.Context(), &repo.DrawResult{
		LotteryType:      req.LotteryType,
		DrawDate:         req.DrawDate,
		FirstPrize:       req.FirstPrize,
		ThreeDigitTop:    req.ThreeDigitTop,
		ThreeDigitFront:  req.ThreeDigitFront,
		ThreeDigitBottom: req.ThreeDigitBottom,
		TwoDigitTop:      req.TwoDigitTop,
		TwoDigitBottom:   req.TwoDigitBottom,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateResult) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"resultId": id, "status": settlement.ResultUnprocessed})
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.repo.ListResults(r.Context(), r.URL.Query().Get("lotteryType"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.ResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, toResultResponse(res))
	}
	writeJSON(w, http.StatusOK, out)
}

// announceResult publica o evento para liquidação assíncrona pelo worker.
func (s *Server) announceResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.repo.GetResult(r.Context(), id)
	if err != nil {
		http.Error(w, "result not found", http.StatusNotFound)
		return
	}
	if res.Status != settlement.ResultUnprocessed {
		http.Error(w, "result already announced or processed", http.StatusConflict)
		return
	}
	if err := s.publ.PublishResultAnnounced(r.Context(), events.ResultAnnounced{
		ResultID:    res.ID,
		LotteryType: res.LotteryType,
		DrawDate:    res.DrawDate,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"resultId": id, "status": "ANNOUNCED"})
}

// processResult liquida de forma síncrona (botão "processar" do admin).
// ?resume=true retoma uma rodada interrompida no meio do lote.
func (s *Server) processResult(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	resume := r.URL.Query().Get("resume") == "true"

	sum, err := s.engine.Settle(r.Context(), id, resume)
	if err != nil {
		switch {
		case errors.Is(err, settlement.ErrResultNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, settlement.ErrAlreadyProcessed),
			errors.Is(err, settlement.ErrAlreadyProcessing):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) errorBets(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.repo.GetResult(r.Context(), id)
	if err != nil {
		http.Error(w, "result not found", http.StatusNotFound)
		return
	}
	bets, err := s.repo.ErrorBets(r.Context(), res.LotteryType, res.DrawDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}

func (s *Server) upsertRate(w http.ResponseWriter, r *http.Request) {
	btParam := chi.URLParam(r, "betType")
	bt, err := lottery.Parse(btParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req dto.UpsertRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.repo.UpsertRate(r.Context(), string(bt), req.Multiplier); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// edição só vale pra frente: invalida o cache, apostas antigas
	// mantêm o potential_win congelado
	if err := rates.Invalidate(r.Context(), s.rdb, bt); err != nil {
		s.log.Warn("rate cache invalidation failed", zap.String("betType", string(bt)), zap.Error(err))
	}
	writeJSON(w, http.StatusOK, map[string]any{"bet_type": string(bt), "multiplier": req.Multiplier})
}

func (s *Server) createBlockedNumber(w http.ResponseWriter, r *http.Request) {
	var req dto.BlockedNumberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BetType != "" {
		if _, err := lottery.Parse(req.BetType); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	id, err := s.repo.CreateBlockedNumber(r.Context(), req.LotteryType, req.Number, req.BetType, req.StartDate, req.EndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) deactivateBlockedNumber(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeactivateBlockedNumber(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) createBetLimit(w http.ResponseWriter, r *http.Request) {
	var req dto.BetLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := s.repo.CreateBetLimit(r.Context(), req.Number, req.MaxAmountCents, req.LotteryTypes, req.StartDate, req.EndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) deactivateBetLimit(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeactivateBetLimit(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toResultResponse(r repo.DrawResult) dto.ResultResponse {
	return dto.ResultResponse{
		ResultID:         r.ID,
		LotteryType:      r.LotteryType,
		DrawDate:         r.DrawDate,
		FirstPrize:       r.FirstPrize,
		ThreeDigitTop:    r.ThreeDigitTop,
		ThreeDigitFront:  r.ThreeDigitFront,
		ThreeDigitBottom: r.ThreeDigitBottom,
		TwoDigitTop:      r.TwoDigitTop,
		TwoDigitBottom:   r.TwoDigitBottom,
		Status:           r.Status,
		IsProcessed:      r.IsProcessed,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
