package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/rates"
	"github.com/radieske/lotto-bet-platform-poc/pkg/lottery"
)

type fakeRates struct{ byType map[lottery.BetType]float64 }

func (f *fakeRates) Rate(_ context.Context, bt lottery.BetType) (float64, error) {
	m, ok := f.byType[bt]
	if !ok {
		return 0, rates.ErrMissingRate
	}
	return m, nil
}

type fakeRules struct {
	blocked map[string]bool  // lotteryType|number|betType (betType "" = todos)
	limits  map[string]int64 // lotteryType|number -> cap
	staked  map[string]int64 // lotteryType|drawDate|number -> stake atual
}

func (f *fakeRules) IsBlocked(_ context.Context, lt, number, betType string, _ time.Time) (bool, error) {
	return f.blocked[lt+"|"+number+"|"+betType] || f.blocked[lt+"|"+number+"|"], nil
}

func (f *fakeRules) ActiveLimit(_ context.Context, lt, number string, _ time.Time) (int64, bool, error) {
	max, ok := f.limits[lt+"|"+number]
	return max, ok, nil
}

func (f *fakeRules) CurrentStake(_ context.Context, lt, drawDate, number string) (int64, error) {
	return f.staked[lt+"|"+drawDate+"|"+number], nil
}

type fakeBets struct {
	inserted [][]BetIntent
	balance  int64
	fail     error
}

func (f *fakeBets) InsertBatch(_ context.Context, userID, lt, drawDate, batchRef string, items []BetIntent) ([]string, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	var total int64
	for _, it := range items {
		total += it.AmountCents
	}
	if f.balance < total {
		return nil, ErrInsufficientBalance
	}
	f.balance -= total
	f.inserted = append(f.inserted, items)
	ids := make([]string, len(items))
	for i := range ids {
		ids[i] = batchRef + "-" + items[i].Numbers
	}
	return ids, nil
}

type fakeCommission struct {
	calls []int64
	fail  error
}

func (f *fakeCommission) Distribute(_ context.Context, _ string, wagered int64, _ string) error {
	f.calls = append(f.calls, wagered)
	return f.fail
}

func newPlacer(r *fakeRates, rules *fakeRules, bets *fakeBets, comm *fakeCommission) *Placer {
	if r == nil {
		r = &fakeRates{byType: map[lottery.BetType]float64{
			lottery.TwoBottom: 90, lottery.TwoTop: 90, lottery.ThreeTop: 850, lottery.RunBottom: 3.2,
		}}
	}
	if rules == nil {
		rules = &fakeRules{blocked: map[string]bool{}, limits: map[string]int64{}, staked: map[string]int64{}}
	}
	// comm nil deve virar interface nil, não um *fakeCommission nil tipado
	var c Commission
	if comm != nil {
		c = comm
	}
	return NewPlacer(zap.NewNop(), r, rules, bets, c)
}

func TestPlaceBetsHappyPath(t *testing.T) {
	bets := &fakeBets{balance: 100000}
	comm := &fakeCommission{}
	p := newPlacer(nil, nil, bets, comm)

	res, err := p.PlaceBets(context.Background(), "u1", "THAI_GOV", "2024-01-01", []BetItemInput{
		{BetType: "TWO_BOTTOM", Numbers: "56", AmountCents: 10000},
		{BetType: "THREE_TOP", Numbers: "456", AmountCents: 5000},
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if res.TotalCents != 15000 {
		t.Errorf("total = %d, want 15000", res.TotalCents)
	}
	if bets.balance != 85000 {
		t.Errorf("balance = %d, want 85000", bets.balance)
	}
	// potential_win = amount × rate no momento da compra
	if res.Bets[0].PotentialWinCents != 900000 {
		t.Errorf("potential win = %d, want 900000", res.Bets[0].PotentialWinCents)
	}
	if res.Bets[1].PotentialWinCents != 4250000 {
		t.Errorf("potential win = %d, want 4250000", res.Bets[1].PotentialWinCents)
	}
	// comissão distribuída sobre o total apostado
	if len(comm.calls) != 1 || comm.calls[0] != 15000 {
		t.Errorf("commission calls = %+v", comm.calls)
	}
}

func TestPlaceBetsValidationRejectsWholeBatch(t *testing.T) {
	bets := &fakeBets{balance: 100000}
	p := newPlacer(nil, nil, bets, nil)

	cases := [][]BetItemInput{
		{},
		{{BetType: "FOUR_TOP", Numbers: "1234", AmountCents: 100}},
		{{BetType: "TWO_TOP", Numbers: "123", AmountCents: 100}}, // dígitos errados
		{{BetType: "TWO_TOP", Numbers: "5a", AmountCents: 100}},
		{{BetType: "TWO_TOP", Numbers: "12", AmountCents: 0}},
		{{BetType: "TWO_TOP", Numbers: "12", AmountCents: 100}, {BetType: "TWO_TOP", Numbers: "1", AmountCents: 100}},
	}
	for i, items := range cases {
		if _, err := p.PlaceBets(context.Background(), "u1", "THAI_GOV", "2024-01-01", items); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: err = %v, want ErrValidation", i, err)
		}
	}
	if len(bets.inserted) != 0 || bets.balance != 100000 {
		t.Error("validation failures must not mutate anything")
	}
}

func TestPlaceBetsInsufficientBalance(t *testing.T) {
	bets := &fakeBets{balance: 5000}
	p := newPlacer(nil, nil, bets, nil)

	_, err := p.PlaceBets(context.Background(), "u1", "THAI_GOV", "2024-01-01", []BetItemInput{
		{BetType: "TWO_TOP", Numbers: "12", AmountCents: 3000},
		{BetType: "TWO_BOTTOM", Numbers: "34", AmountCents: 3000},
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	// lote inteiro rejeitado: saldo intacto, zero apostas
	if bets.balance != 5000 || len(bets.inserted) != 0 {
		t.Error("partial placement detected")
	}
}

func TestPlaceBetsBlockedNumber(t *testing.T) {
	rules := &fakeRules{
		blocked: map[string]bool{"THAI_GOV|123|": true}, // bloqueio sem bet_type vale pra todas
		limits:  map[string]int64{}, staked: map[string]int64{},
	}
	bets := &fakeBets{balance: 100000}
	p := newPlacer(nil, rules, bets, nil)

	for _, bt := range []string{"THREE_TOP", "THREE_TOOD"} {
		_, err := p.PlaceBets(context.Background(), "u1", "THAI_GOV", "2024-01-01", []BetItemInput{
			{BetType: bt, Numbers: "123", AmountCents: 1000},
		})
		if !errors.Is(err, ErrBlockedNumber) {
			t.Errorf("%s: err = %v, want ErrBlockedNumber", bt, err)
		}
	}
}

func TestPlaceBetsLimitExceeded(t *testing.T) {
	rules := &fakeRules{
		blocked: map[string]bool{},
		limits:  map[string]int64{"THAI_GOV|56": 20000},
		staked:  map[string]int64{"THAI_GOV|2024-01-01|56": 15000},
	}
	bets := &fakeBets{balance: 100000}
	p := newPlacer(nil, rules, bets, nil)

	// 15000 já apostado + 6000 do lote estoura o teto de 20000
	_, err := p.PlaceBets(context.Background(), "u1", "THAI_GOV", "2024-01-01", []BetItemInput{
		{BetType: "TWO_BOTTOM", Numbers: "56", AmountCents: 6000},
	})
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("err = %v, want ErrLimitExceeded", err)
	}

	// dentro do teto passa
	if _, err := p.PlaceBets(context.Background(), "u1", "THAI_GOV", "2024-01-01", []BetItemInput{
		{BetType: "TWO_BOTTOM", Numbers: "56", AmountCents: 5000},
	}); err != nil {
		t.Fatalf("within cap: %v", err)
	}
}

func TestPlaceBetsMissingRate(t *testing.T) {
	r := &fakeRates{byType: map[lottery.BetType]float64{}}
	bets := &fakeBets{balance: 100000}
	p := newPlacer(r, nil, bets, nil)

	_, err := p.PlaceBets(context.Background(), "u1", "THAI_GOV", "2024-01-01", []BetItemInput{
		{BetType: "TWO_TOP", Numbers: "12", AmountCents: 1000},
	})
	if !errors.Is(err, rates.ErrMissingRate) {
		t.Fatalf("err = %v, want ErrMissingRate", err)
	}
	if len(bets.inserted) != 0 {
		t.Error("missing rate must reject before mutation")
	}
}

func TestPlaceBetsCommissionFailureDoesNotFailPlacement(t *testing.T) {
	bets := &fakeBets{balance: 100000}
	comm := &fakeCommission{fail: errors.New("commission db down")}
	p := newPlacer(nil, nil, bets, comm)

	if _, err := p.PlaceBets(context.Background(), "u1", "THAI_GOV", "2024-01-01", []BetItemInput{
		{BetType: "TWO_TOP", Numbers: "12", AmountCents: 1000},
	}); err != nil {
		t.Fatalf("placement must survive commission failure: %v", err)
	}
	if len(bets.inserted) != 1 {
		t.Error("bet not inserted")
	}
}
