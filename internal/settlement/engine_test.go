package settlement

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/pkg/lottery"
)

// fakeStore implementa Store em memória com a mesma semântica de CAS
// e de UPDATE condicional do Postgres.
type fakeStore struct {
	result     *DrawResult
	staleClaim bool
	bets       map[string]*Bet
	order      []string
	balances   map[string]int64
	ledger     []string // references das transactions de win
	reasons    map[string]string
	failWin    map[string]error
}

func newFakeStore(result *DrawResult, bets ...Bet) *fakeStore {
	f := &fakeStore{
		result:   result,
		bets:     map[string]*Bet{},
		balances: map[string]int64{},
		reasons:  map[string]string{},
		failWin:  map[string]error{},
	}
	for i := range bets {
		b := bets[i]
		f.bets[b.ID] = &b
		f.order = append(f.order, b.ID)
	}
	return f
}

func (f *fakeStore) ClaimResult(_ context.Context, resultID string, resume bool) (*DrawResult, error) {
	if f.result == nil || f.result.ID != resultID {
		return nil, ErrResultNotFound
	}
	switch f.result.Status {
	case ResultUnprocessed:
		f.result.Status = ResultProcessing
		r := *f.result
		return &r, nil
	case ResultProcessing:
		if resume && f.staleClaim {
			r := *f.result
			return &r, nil
		}
		return nil, ErrAlreadyProcessing
	default:
		return nil, ErrAlreadyProcessed
	}
}

func (f *fakeStore) PendingBets(_ context.Context, lotteryType, drawDate string) ([]Bet, error) {
	var out []Bet
	for _, id := range f.order {
		b := f.bets[id]
		if b.Status == BetPending && b.LotteryType == lotteryType && b.DrawDate == drawDate {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) SettleWin(_ context.Context, bet Bet, payoutCents int64) error {
	if err := f.failWin[bet.ID]; err != nil {
		return err
	}
	b := f.bets[bet.ID]
	if b.Status != BetPending {
		return nil
	}
	b.Status = BetWon
	f.balances[bet.UserID] += payoutCents
	f.ledger = append(f.ledger, "win:"+bet.ID)
	return nil
}

func (f *fakeStore) SettleLoss(_ context.Context, betID string) error {
	if b := f.bets[betID]; b.Status == BetPending {
		b.Status = BetLost
	}
	return nil
}

func (f *fakeStore) MarkBetError(_ context.Context, betID string, reason string) error {
	if b := f.bets[betID]; b.Status == BetPending {
		b.Status = BetError
		f.reasons[betID] = reason
	}
	return nil
}

func (f *fakeStore) FinalizeResult(_ context.Context, resultID string) error {
	f.result.Status = ResultProcessed
	f.result.IsProcessed = true
	return nil
}

func thaiGovResult() *DrawResult {
	return &DrawResult{
		ID:          "res-1",
		LotteryType: "THAI_GOV",
		DrawDate:    "2024-01-01",
		Status:      ResultUnprocessed,
		Numbers: lottery.DrawNumbers{
			FirstPrize:       "123456",
			ThreeDigitTop:    "456",
			ThreeDigitFront:  "789",
			ThreeDigitBottom: "321",
			TwoDigitTop:      "45",
			TwoDigitBottom:   "56",
		},
	}
}

func pendingBet(id, betType, numbers string, amount, potential int64) Bet {
	return Bet{
		ID: id, UserID: "user-" + id, LotteryType: "THAI_GOV", DrawDate: "2024-01-01",
		BetType: betType, Numbers: numbers,
		AmountCents: amount, PotentialWinCents: potential, Status: BetPending,
	}
}

func TestSettleWinnersAndLosers(t *testing.T) {
	store := newFakeStore(thaiGovResult(),
		pendingBet("b1", "TWO_BOTTOM", "56", 10000, 900000),  // ganha
		pendingBet("b2", "RUN_BOTTOM", "5", 10000, 32000),    // "5" está em "56": ganha
		pendingBet("b3", "TWO_TOP", "99", 10000, 900000),     // perde
		pendingBet("b4", "THREE_TOOD", "654", 5000, 625000),  // permutação do topo: ganha
		pendingBet("b5", "THREE_TOP", "654", 5000, 4250000),  // exato exige ordem: perde
	)
	eng := NewEngine(zap.NewNop(), store)

	sum, err := eng.Settle(context.Background(), "res-1", false)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if sum.WonCount != 3 || sum.LostCount != 2 || sum.ErrorCount != 0 {
		t.Fatalf("summary = %+v, want 3 won / 2 lost / 0 error", sum)
	}
	if want := int64(900000 + 32000 + 625000); sum.TotalPayoutCents != want {
		t.Errorf("total payout = %d, want %d", sum.TotalPayoutCents, want)
	}

	// pagamento usa o potential_win congelado na compra
	if got := store.balances["user-b1"]; got != 900000 {
		t.Errorf("winner balance = %d, want 900000", got)
	}
	// perdedor não movimenta saldo
	if got := store.balances["user-b3"]; got != 0 {
		t.Errorf("loser balance = %d, want 0", got)
	}
	if store.bets["b2"].Status != BetWon || store.bets["b5"].Status != BetLost {
		t.Error("bet statuses not updated")
	}
	if !store.result.IsProcessed || store.result.Status != ResultProcessed {
		t.Error("result should be PROCESSED after all bets are visited")
	}
	if len(store.ledger) != 3 {
		t.Errorf("expected one win transaction per winner, got %d", len(store.ledger))
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	store := newFakeStore(thaiGovResult(), pendingBet("b1", "TWO_BOTTOM", "56", 10000, 900000))
	eng := NewEngine(zap.NewNop(), store)

	if _, err := eng.Settle(context.Background(), "res-1", false); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	balAfterFirst := store.balances["user-b1"]

	_, err := eng.Settle(context.Background(), "res-1", false)
	if !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("second settle err = %v, want ErrAlreadyProcessed", err)
	}
	if store.balances["user-b1"] != balAfterFirst {
		t.Error("second settle must not change balances")
	}
}

func TestSettleRejectsConcurrentRun(t *testing.T) {
	res := thaiGovResult()
	res.Status = ResultProcessing
	store := newFakeStore(res)
	eng := NewEngine(zap.NewNop(), store)

	if _, err := eng.Settle(context.Background(), "res-1", false); !errors.Is(err, ErrAlreadyProcessing) {
		t.Fatalf("err = %v, want ErrAlreadyProcessing", err)
	}
}

func TestSettleResultNotFound(t *testing.T) {
	store := newFakeStore(thaiGovResult())
	eng := NewEngine(zap.NewNop(), store)
	if _, err := eng.Settle(context.Background(), "missing", false); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("err = %v, want ErrResultNotFound", err)
	}
}

func TestSettleSkipsBrokenBetAndContinues(t *testing.T) {
	store := newFakeStore(thaiGovResult(),
		pendingBet("b1", "FOUR_TOP", "1234", 10000, 50000),  // modalidade desconhecida
		pendingBet("b2", "TWO_BOTTOM", "56", 10000, 0),      // ganharia, mas sem rate congelado
		pendingBet("b3", "TWO_BOTTOM", "56", 10000, 900000), // normal
	)
	eng := NewEngine(zap.NewNop(), store)

	sum, err := eng.Settle(context.Background(), "res-1", false)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if sum.ErrorCount != 2 || sum.WonCount != 1 {
		t.Fatalf("summary = %+v, want 2 errors / 1 won", sum)
	}
	if store.bets["b1"].Status != BetError || store.bets["b2"].Status != BetError {
		t.Error("broken bets should be marked ERROR for manual review")
	}
	if store.reasons["b2"] != "missing rate at placement time" {
		t.Errorf("unexpected reason: %q", store.reasons["b2"])
	}
	// erro por aposta não pode travar o fechamento do lote
	if !store.result.IsProcessed {
		t.Error("result should still be PROCESSED")
	}
	if store.balances["user-b2"] != 0 {
		t.Error("bet without frozen rate must not be paid")
	}
}

func TestSettleStoreFailureDoesNotAbortBatch(t *testing.T) {
	store := newFakeStore(thaiGovResult(),
		pendingBet("b1", "TWO_BOTTOM", "56", 10000, 900000),
		pendingBet("b2", "TWO_BOTTOM", "56", 10000, 900000),
	)
	store.failWin["b1"] = errors.New("deadlock")
	eng := NewEngine(zap.NewNop(), store)

	sum, err := eng.Settle(context.Background(), "res-1", false)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if sum.ErrorCount != 1 || sum.WonCount != 1 {
		t.Fatalf("summary = %+v, want 1 error / 1 won", sum)
	}
}

func TestSettleResumeStaleRun(t *testing.T) {
	res := thaiGovResult()
	res.Status = ResultProcessing
	store := newFakeStore(res,
		pendingBet("b2", "TWO_BOTTOM", "56", 10000, 900000), // ficou pendente no crash
	)
	store.staleClaim = true
	// b1 já havia sido liquidada na rodada interrompida
	won := pendingBet("b1", "TWO_BOTTOM", "56", 10000, 900000)
	won.Status = BetWon
	store.bets["b1"] = &won
	store.order = append(store.order, "b1")
	store.balances["user-b1"] = 900000

	eng := NewEngine(zap.NewNop(), store)

	// sem resume, claim PROCESSING é rejeitado
	if _, err := eng.Settle(context.Background(), "res-1", false); !errors.Is(err, ErrAlreadyProcessing) {
		t.Fatalf("err = %v, want ErrAlreadyProcessing", err)
	}

	sum, err := eng.Settle(context.Background(), "res-1", true)
	if err != nil {
		t.Fatalf("resume settle: %v", err)
	}
	if sum.WonCount != 1 {
		t.Fatalf("resume should settle only the still-pending bet, got %+v", sum)
	}
	// aposta já WON não pode ser paga de novo
	if store.balances["user-b1"] != 900000 {
		t.Error("already-settled bet was paid twice on resume")
	}
	if !store.result.IsProcessed {
		t.Error("resumed run should finalize the result")
	}
}
