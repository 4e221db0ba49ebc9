package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/pkg/lottery"
)

// Taxonomia de erro da compra de apostas. Todos são rejeitados antes de
// qualquer mutação: lote inválido nunca deixa aposta parcial no banco.
var (
	ErrValidation          = errors.New("invalid bet request")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBlockedNumber       = errors.New("number is blocked for this lottery")
	ErrLimitExceeded       = errors.New("stake limit exceeded for number")
)

// BetIntent é um item do lote já validado e precificado.
type BetIntent struct {
	BetType           lottery.BetType
	Numbers           string
	AmountCents       int64
	PotentialWinCents int64
}

// BetItemInput é um item cru vindo da request.
type BetItemInput struct {
	BetType     string
	Numbers     string
	AmountCents int64
}

// RateSource resolve o multiplicador de pagamento por modalidade.
type RateSource interface {
	Rate(ctx context.Context, bt lottery.BetType) (float64, error)
}

// RuleStore consulta bloqueios e limites vigentes no momento da compra.
type RuleStore interface {
	IsBlocked(ctx context.Context, lotteryType, number, betType string, at time.Time) (bool, error)
	// ActiveLimit retorna o teto de stake agregado para o número
	// (ok=false quando não há limite configurado).
	ActiveLimit(ctx context.Context, lotteryType, number string, at time.Time) (maxCents int64, ok bool, err error)
	// CurrentStake soma o stake já apostado no número para o sorteio.
	CurrentStake(ctx context.Context, lotteryType, drawDate, number string) (int64, error)
}

// BetStore persiste o lote: débito condicional do saldo + uma linha de
// aposta e uma transaction por item, numa única transação de banco.
type BetStore interface {
	InsertBatch(ctx context.Context, userID, lotteryType, drawDate, batchRef string, items []BetIntent) (betIDs []string, err error)
}

// Commission dispara a distribuição de comissão de afiliado.
type Commission interface {
	Distribute(ctx context.Context, bettingUserID string, wageredCents int64, reference string) error
}

type PlacedBet struct {
	ID                string
	BetType           lottery.BetType
	Numbers           string
	AmountCents       int64
	PotentialWinCents int64
}

type PlacementResult struct {
	BatchID    string
	Bets       []PlacedBet
	TotalCents int64
}

// Placer valida, precifica e persiste lotes de apostas.
type Placer struct {
	log        *zap.Logger
	rates      RateSource
	rules      RuleStore
	bets       BetStore
	commission Commission
	now        func() time.Time
}

func NewPlacer(log *zap.Logger, rates RateSource, rules RuleStore, bets BetStore, commission Commission) *Placer {
	return &Placer{log: log, rates: rates, rules: rules, bets: bets, commission: commission, now: time.Now}
}

// PlaceBets executa o contrato de compra: valida cada item (dígitos,
// bloqueio, limite, rate), congela potential_win = amount × rate e grava
// o lote inteiro atomicamente. Qualquer violação rejeita o lote todo.
func (p *Placer) PlaceBets(ctx context.Context, userID, lotteryType, drawDate string, items []BetItemInput) (*PlacementResult, error) {
	if userID == "" || lotteryType == "" || drawDate == "" || len(items) == 0 {
		return nil, fmt.Errorf("%w: missing user, lottery, draw date or items", ErrValidation)
	}
	at := p.now()

	intents := make([]BetIntent, 0, len(items))
	var total int64
	stakeByNumber := map[string]int64{}

	for i, item := range items {
		bt, err := lottery.Parse(item.BetType)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrValidation, i, err)
		}
		if err := bt.ValidNumbers(item.Numbers); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ErrValidation, i, err)
		}
		if item.AmountCents <= 0 {
			return nil, fmt.Errorf("%w: item %d: amount must be positive", ErrValidation, i)
		}

		blocked, err := p.rules.IsBlocked(ctx, lotteryType, item.Numbers, string(bt), at)
		if err != nil {
			return nil, fmt.Errorf("check blocked number: %w", err)
		}
		if blocked {
			return nil, fmt.Errorf("%w: %s", ErrBlockedNumber, item.Numbers)
		}

		// rate ausente é erro de configuração, nunca default silencioso
		multiplier, err := p.rates.Rate(ctx, bt)
		if err != nil {
			return nil, fmt.Errorf("rate for %s: %w", bt, err)
		}

		intents = append(intents, BetIntent{
			BetType:           bt,
			Numbers:           item.Numbers,
			AmountCents:       item.AmountCents,
			PotentialWinCents: int64(math.Round(float64(item.AmountCents) * multiplier)),
		})
		total += item.AmountCents
		stakeByNumber[item.Numbers] += item.AmountCents
	}

	// limite agrega o stake já existente no número com o do próprio lote
	for number, batchStake := range stakeByNumber {
		maxCents, ok, err := p.rules.ActiveLimit(ctx, lotteryType, number, at)
		if err != nil {
			return nil, fmt.Errorf("check bet limit: %w", err)
		}
		if !ok {
			continue
		}
		current, err := p.rules.CurrentStake(ctx, lotteryType, drawDate, number)
		if err != nil {
			return nil, fmt.Errorf("aggregate stake: %w", err)
		}
		if current+batchStake > maxCents {
			return nil, fmt.Errorf("%w: %s (cap %d, would reach %d)", ErrLimitExceeded, number, maxCents, current+batchStake)
		}
	}

	batchID := uuid.NewString()
	betIDs, err := p.bets.InsertBatch(ctx, userID, lotteryType, drawDate, batchID, intents)
	if err != nil {
		return nil, err
	}

	// comissão é pós-commit: falha aqui não desfaz a compra
	if p.commission != nil {
		if err := p.commission.Distribute(ctx, userID, total, batchID); err != nil {
			p.log.Error("affiliate distribution failed",
				zap.String("userId", userID), zap.String("batchId", batchID), zap.Error(err))
		}
	}

	res := &PlacementResult{BatchID: batchID, TotalCents: total}
	for i, in := range intents {
		res.Bets = append(res.Bets, PlacedBet{
			ID:                betIDs[i],
			BetType:           in.BetType,
			Numbers:           in.Numbers,
			AmountCents:       in.AmountCents,
			PotentialWinCents: in.PotentialWinCents,
		})
	}
	return res, nil
}
