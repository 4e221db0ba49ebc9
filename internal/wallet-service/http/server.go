package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/wallet-service/dto"
	"github.com/radieske/lotto-bet-platform-poc/internal/wallet-service/repo"
	"github.com/radieske/lotto-bet-platform-poc/pkg/contracts/events"
)

// Ledger define a interface de operações de carteira usadas pelo handler HTTP
type Ledger interface {
	GetBalance(ctx context.Context, userID string) (int64, error)
	CreateRequest(ctx context.Context, userID, txType string, amountCents int64, reference string) (*repo.Transaction, error)
	Review(ctx context.Context, transactionID string, approve bool) (*repo.Transaction, error)
	AdjustBalance(ctx context.Context, userID string, deltaCents int64, txType, reference string) (*repo.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]repo.Transaction, error)
	ListPendingRequests(ctx context.Context) ([]repo.Transaction, error)
}

// Server expõe endpoints HTTP para o ledger de contas.
type Server struct {
	log        *zap.Logger
	ledger     Ledger
	adminToken string
	publ       interface {
		PublishWalletEvent(context.Context, events.WalletEvent) error
	}
}

func NewServer(log *zap.Logger, ledger Ledger, adminToken string, publ interface {
	PublishWalletEvent(context.Context, events.WalletEvent) error
}) *Server {
	return &Server{log: log, ledger: ledger, adminToken: adminToken, publ: publ}
}

// Router retorna o mux HTTP com as rotas da API de wallet
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getBalance)                // GET ?userId=...
	mux.HandleFunc("/wallet/deposit", s.depositRequest)    // POST
	mux.HandleFunc("/wallet/withdraw", s.withdrawRequest)  // POST
	mux.HandleFunc("/wallet/transactions", s.listTx)       // GET ?userId=...
	mux.HandleFunc("/wallet/requests", s.pendingRequests)  // GET (admin)
	mux.HandleFunc("/wallet/review", s.review)             // POST (admin)
	mux.HandleFunc("/wallet/adjust", s.adjust)             // POST (admin)
	return mux
}

// requireAdmin valida o token administrativo compartilhado.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("X-Admin-Token") != s.adminToken {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	bal, err := s.ledger.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.BalanceResponse{UserID: userID, BalanceCents: bal})
}

func (s *Server) depositRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	t, err := s.ledger.CreateRequest(r.Context(), req.UserID, repo.TypeDeposit, req.AmountCents, req.Reference)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.notify(r.Context(), t, events.WalletDepositRequested)
	writeJSON(w, toTxResponse(t))
}

func (s *Server) withdrawRequest(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountCents <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	t, err := s.ledger.CreateRequest(r.Context(), req.UserID, repo.TypeWithdrawal, req.AmountCents, "")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.notify(r.Context(), t, events.WalletWithdrawalRequested)
	writeJSON(w, toTxResponse(t))
}

func (s *Server) review(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	var req dto.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.TransactionID == "" {
		http.Error(w, "transactionId required", http.StatusBadRequest)
		return
	}
	t, err := s.ledger.Review(r.Context(), req.TransactionID, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, repo.ErrAlreadyReviewed), errors.Is(err, repo.ErrInsufficientFunds):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	s.notify(r.Context(), t, reviewEventType(t))
	writeJSON(w, toTxResponse(t))
}

func (s *Server) adjust(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	var req dto.AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.DeltaCents == 0 || req.Reference == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		req.Type = repo.TypeAdjustment
	}
	if !repo.ValidType(req.Type) {
		http.Error(w, repo.ErrInvalidType.Error(), http.StatusBadRequest)
		return
	}
	t, err := s.ledger.AdjustBalance(r.Context(), req.UserID, req.DeltaCents, req.Type, req.Reference)
	if err != nil {
		if errors.Is(err, repo.ErrInsufficientFunds) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, toTxResponse(t))
}

func (s *Server) listTx(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	txs, err := s.ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, toTxResponse(&txs[i]))
	}
	writeJSON(w, out)
}

func (s *Server) pendingRequests(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	txs, err := s.ledger.ListPendingRequests(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, toTxResponse(&txs[i]))
	}
	writeJSON(w, out)
}

// notify publica o evento de carteira fire-and-forget: falha de
// notificação nunca falha a operação financeira.
func (s *Server) notify(ctx context.Context, t *repo.Transaction, eventType string) {
	if s.publ == nil {
		return
	}
	err := s.publ.PublishWalletEvent(ctx, events.WalletEvent{
		TransactionID: t.ID,
		UserID:        t.UserID,
		Type:          eventType,
		AmountCents:   t.AmountCents,
		Reference:     t.Reference,
	})
	if err != nil {
		s.log.Warn("wallet event publish failed",
			zap.String("transactionId", t.ID), zap.Error(err))
	}
}

func reviewEventType(t *repo.Transaction) string {
	switch {
	case t.Type == repo.TypeDeposit && t.Status == "approved":
		return events.WalletDepositApproved
	case t.Type == repo.TypeDeposit:
		return events.WalletDepositRejected
	case t.Status == "approved":
		return events.WalletWithdrawalApproved
	default:
		return events.WalletWithdrawalRejected
	}
}

func toTxResponse(t *repo.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		TransactionID: t.ID,
		UserID:        t.UserID,
		Type:          t.Type,
		AmountCents:   t.AmountCents,
		Status:        t.Status,
		Reference:     t.Reference,
		CreatedAt:     t.CreatedAt,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
