package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/auth"
	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/dto"
	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/rates"
	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/repo"
	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/service"
	"github.com/radieske/lotto-bet-platform-poc/pkg/lottery"
)

// Server expõe a API pública de apostas.
type Server struct {
	log    *zap.Logger
	auth   *auth.Manager
	placer *service.Placer
	users  *repo.Postgres
	rates  *rates.Source
}

func NewServer(log *zap.Logger, am *auth.Manager, placer *service.Placer, users *repo.Postgres, rs *rates.Source) *Server {
	return &Server{log: log, auth: am, placer: placer, users: users, rates: rs}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RateLimit(rate.Every(time.Second/10), 20))

	r.Post("/v1/auth/register", s.register)
	r.Post("/v1/auth/login", s.login)
	r.Get("/v1/rates", s.listRates)

	r.Group(func(r chi.Router) {
		r.Use(s.auth.Middleware)
		r.Post("/v1/bets", s.placeBets)
		r.Get("/v1/bets", s.listBets)
	})
	return r
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "hash password", http.StatusInternalServerError)
		return
	}

	u, err := s.users.CreateUser(r.Context(), req.Username, hash, req.ReferredBy)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrUsernameTaken),
			errors.Is(err, repo.ErrUnknownReferral),
			errors.Is(err, repo.ErrCircularReferral):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	token, err := s.auth.IssueToken(u.ID)
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, dto.AuthResponse{UserID: u.ID, Token: token, ReferralCode: u.ReferralCode})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := s.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.auth.IssueToken(u.ID)
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{UserID: u.ID, Token: token, ReferralCode: u.ReferralCode})
}

func (s *Server) placeBets(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	items := make([]service.BetItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, service.BetItemInput{
			BetType: it.BetType, Numbers: it.Numbers, AmountCents: it.AmountCents,
		})
	}

	res, err := s.placer.PlaceBets(r.Context(), auth.UserID(r.Context()), req.LotteryType, req.DrawDate, items)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, service.ErrInsufficientBalance),
			errors.Is(err, service.ErrBlockedNumber),
			errors.Is(err, service.ErrLimitExceeded):
			status = http.StatusConflict
		case errors.Is(err, rates.ErrMissingRate):
			// erro de configuração da casa, não do apostador
			s.log.Error("rate table misconfigured", zap.Error(err))
		}
		http.Error(w, err.Error(), status)
		return
	}

	resp := dto.PlaceBetsResponse{BatchID: res.BatchID, TotalCents: res.TotalCents}
	for _, b := range res.Bets {
		resp.Bets = append(resp.Bets, dto.PlacedBet{
			BetID: b.ID, BetType: string(b.BetType), Numbers: b.Numbers,
			AmountCents: b.AmountCents, PotentialWinCents: b.PotentialWinCents,
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	bets, err := s.users.ListBets(r.Context(), auth.UserID(r.Context()), status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, dto.BetResponse{
			BetID: b.ID, LotteryType: b.LotteryType, BetType: b.BetType, Numbers: b.Numbers,
			AmountCents: b.AmountCents, PotentialWinCents: b.PotentialWinCents,
			WinAmountCents: b.WinAmountCents, Status: b.Status, DrawDate: b.DrawDate,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listRates(w http.ResponseWriter, r *http.Request) {
	var out []dto.RateResponse
	for _, bt := range lottery.All() {
		m, err := s.rates.Rate(r.Context(), bt)
		if err != nil {
			if errors.Is(err, rates.ErrMissingRate) {
				continue // modalidade sem rate não é vendida
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out = append(out, dto.RateResponse{BetType: string(bt), Multiplier: m})
	}
	writeJSON(w, http.StatusOK, out)
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
