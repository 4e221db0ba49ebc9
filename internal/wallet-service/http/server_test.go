package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/wallet-service/dto"
	"github.com/radieske/lotto-bet-platform-poc/internal/wallet-service/repo"
	"github.com/radieske/lotto-bet-platform-poc/pkg/contracts/events"
)

type fakeLedger struct {
	balances map[string]int64
	txs      map[string]*repo.Transaction
	adjusts  int
	lastType string
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: map[string]int64{}, txs: map[string]*repo.Transaction{}}
}

func (f *fakeLedger) GetBalance(_ context.Context, userID string) (int64, error) {
	bal, ok := f.balances[userID]
	if !ok {
		return 0, repo.ErrNotFound
	}
	return bal, nil
}

func (f *fakeLedger) CreateRequest(_ context.Context, userID, txType string, amountCents int64, reference string) (*repo.Transaction, error) {
	amt := amountCents
	if txType == repo.TypeWithdrawal {
		amt = -amountCents
	}
	t := &repo.Transaction{ID: "tx-" + txType, UserID: userID, Type: txType, AmountCents: amt, Status: "pending", Reference: reference}
	f.txs[t.ID] = t
	return t, nil
}

func (f *fakeLedger) Review(_ context.Context, transactionID string, approve bool) (*repo.Transaction, error) {
	t, ok := f.txs[transactionID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if t.Status != "pending" {
		return nil, repo.ErrAlreadyReviewed
	}
	if !approve {
		t.Status = "rejected"
		return t, nil
	}
	if t.AmountCents < 0 && f.balances[t.UserID] < -t.AmountCents {
		return nil, repo.ErrInsufficientFunds
	}
	f.balances[t.UserID] += t.AmountCents
	f.adjusts++
	t.Status = "approved"
	return t, nil
}

func (f *fakeLedger) AdjustBalance(_ context.Context, userID string, deltaCents int64, txType, reference string) (*repo.Transaction, error) {
	if deltaCents < 0 && f.balances[userID] < -deltaCents {
		return nil, repo.ErrInsufficientFunds
	}
	f.balances[userID] += deltaCents
	f.adjusts++
	f.lastType = txType
	return &repo.Transaction{ID: "adj-1", UserID: userID, Type: txType, AmountCents: deltaCents, Status: "approved", Reference: reference}, nil
}

func (f *fakeLedger) ListTransactions(context.Context, string) ([]repo.Transaction, error) {
	return nil, nil
}

func (f *fakeLedger) ListPendingRequests(context.Context) ([]repo.Transaction, error) {
	return nil, nil
}

type fakePublisher struct {
	published []events.WalletEvent
	fail      error
}

func (f *fakePublisher) PublishWalletEvent(_ context.Context, e events.WalletEvent) error {
	if f.fail != nil {
		return f.fail
	}
	f.published = append(f.published, e)
	return nil
}

func postJSON(t *testing.T, h http.Handler, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-Admin-Token", "test-admin")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDepositRequestPublishesEvent(t *testing.T) {
	ledger := newFakeLedger()
	publ := &fakePublisher{}
	h := NewServer(zap.NewNop(), ledger, "test-admin", publ).Router()

	rec := postJSON(t, h, "/wallet/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 5000}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if len(publ.published) != 1 || publ.published[0].Type != events.WalletDepositRequested {
		t.Errorf("published = %+v", publ.published)
	}
	// pedido nasce pending, sem tocar no saldo
	if ledger.adjusts != 0 {
		t.Error("deposit request must not mutate balance")
	}
}

func TestNotificationFailureDoesNotFailOperation(t *testing.T) {
	ledger := newFakeLedger()
	publ := &fakePublisher{fail: errors.New("kafka down")}
	h := NewServer(zap.NewNop(), ledger, "test-admin", publ).Router()

	rec := postJSON(t, h, "/wallet/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 5000}, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("operation must survive notification failure, status = %d", rec.Code)
	}
}

func TestReviewApprovalAdjustsExactlyOnce(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances["u1"] = 0
	publ := &fakePublisher{}
	h := NewServer(zap.NewNop(), ledger, "test-admin", publ).Router()

	postJSON(t, h, "/wallet/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 5000}, false)

	rec := postJSON(t, h, "/wallet/review", dto.ReviewRequest{TransactionID: "tx-deposit", Approve: true}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("review status = %d: %s", rec.Code, rec.Body.String())
	}
	if ledger.balances["u1"] != 5000 || ledger.adjusts != 1 {
		t.Errorf("balance = %d, adjusts = %d", ledger.balances["u1"], ledger.adjusts)
	}
	if publ.published[len(publ.published)-1].Type != events.WalletDepositApproved {
		t.Errorf("last event = %+v", publ.published[len(publ.published)-1])
	}

	// segunda revisão do mesmo pedido não pode ajustar de novo
	rec = postJSON(t, h, "/wallet/review", dto.ReviewRequest{TransactionID: "tx-deposit", Approve: true}, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("double review status = %d, want 409", rec.Code)
	}
	if ledger.adjusts != 1 {
		t.Error("double review adjusted balance twice")
	}
}

func TestReviewRejectionTouchesNothing(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances["u1"] = 0
	h := NewServer(zap.NewNop(), ledger, "test-admin", &fakePublisher{}).Router()

	postJSON(t, h, "/wallet/deposit", dto.DepositRequest{UserID: "u1", AmountCents: 5000}, false)
	rec := postJSON(t, h, "/wallet/review", dto.ReviewRequest{TransactionID: "tx-deposit", Approve: false}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ledger.balances["u1"] != 0 || ledger.adjusts != 0 {
		t.Error("rejection must not mutate balance")
	}
}

func TestWithdrawalApprovalRespectsBalance(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances["u1"] = 1000
	h := NewServer(zap.NewNop(), ledger, "test-admin", &fakePublisher{}).Router()

	postJSON(t, h, "/wallet/withdraw", dto.WithdrawRequest{UserID: "u1", AmountCents: 5000}, false)
	rec := postJSON(t, h, "/wallet/review", dto.ReviewRequest{TransactionID: "tx-withdrawal", Approve: true}, true)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 insufficient funds", rec.Code)
	}
	if ledger.balances["u1"] != 1000 {
		t.Error("balance must stay non-negative and untouched")
	}
}

func TestAdjustRejectsUnknownType(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances["u1"] = 0
	h := NewServer(zap.NewNop(), ledger, "test-admin", &fakePublisher{}).Router()

	rec := postJSON(t, h, "/wallet/adjust", dto.AdjustRequest{UserID: "u1", DeltaCents: 100, Type: "jackpot", Reference: "r1"}, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	// tipo fora do vocabulário não pode chegar ao ledger
	if ledger.adjusts != 0 {
		t.Error("invalid type must not reach the ledger")
	}
}

func TestAdjustDefaultsToAdjustmentType(t *testing.T) {
	ledger := newFakeLedger()
	ledger.balances["u1"] = 0
	h := NewServer(zap.NewNop(), ledger, "test-admin", &fakePublisher{}).Router()

	rec := postJSON(t, h, "/wallet/adjust", dto.AdjustRequest{UserID: "u1", DeltaCents: 100, Reference: "r2"}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ledger.lastType != repo.TypeAdjustment {
		t.Errorf("ledger type = %q, want %q", ledger.lastType, repo.TypeAdjustment)
	}
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	h := NewServer(zap.NewNop(), newFakeLedger(), "test-admin", &fakePublisher{}).Router()

	rec := postJSON(t, h, "/wallet/review", dto.ReviewRequest{TransactionID: "x", Approve: true}, false)
	if rec.Code != http.StatusForbidden {
		t.Errorf("review without token: status = %d, want 403", rec.Code)
	}
	rec = postJSON(t, h, "/wallet/adjust", dto.AdjustRequest{UserID: "u1", DeltaCents: 100, Type: "deposit", Reference: "r"}, false)
	if rec.Code != http.StatusForbidden {
		t.Errorf("adjust without token: status = %d, want 403", rec.Code)
	}
}
