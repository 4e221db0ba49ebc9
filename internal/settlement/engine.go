package settlement

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/pkg/lottery"
)

// Store define a persistência consumida pela engine de liquidação.
// Cada operação de escrita é atômica no banco (status + saldo + ledger
// na mesma transação); a engine nunca vê estado intermediário.
type Store interface {
	// ClaimResult faz o compare-and-set UNPROCESSED -> PROCESSING.
	// Com resume=true também toma posse de um claim PROCESSING vencido
	// (retomada após crash no meio do lote).
	ClaimResult(ctx context.Context, resultID string, resume bool) (*DrawResult, error)
	// PendingBets lista as apostas ainda PENDING do par (lotteryType, drawDate).
	PendingBets(ctx context.Context, lotteryType, drawDate string) ([]Bet, error)
	// SettleWin marca WON, credita o saldo e grava a transaction "win",
	// tudo numa transação. Aposta já liquidada é no-op (re-run seguro).
	SettleWin(ctx context.Context, bet Bet, payoutCents int64) error
	// SettleLoss marca LOST sem mexer em saldo.
	SettleLoss(ctx context.Context, betID string) error
	// MarkBetError marca ERROR com o motivo, para revisão manual.
	MarkBetError(ctx context.Context, betID string, reason string) error
	// FinalizeResult fecha PROCESSING -> PROCESSED (is_processed=true).
	FinalizeResult(ctx context.Context, resultID string) error
}

// Engine liquida todas as apostas pendentes de um sorteio, exatamente
// uma vez por resultado.
type Engine struct {
	log   *zap.Logger
	store Store
}

func NewEngine(log *zap.Logger, store Store) *Engine {
	return &Engine{log: log, store: store}
}

// Settle executa a liquidação de um resultado:
//  1. toma posse do resultado via CAS (guarda de concorrência/idempotência)
//  2. confere cada aposta pendente pela regra da modalidade
//  3. ganho paga o potential_win congelado na compra; perda só muda status
//  4. erro por aposta não aborta o lote: marca ERROR e segue
//  5. só fecha PROCESSED depois de visitar todas as apostas
func (e *Engine) Settle(ctx context.Context, resultID string, resume bool) (*Summary, error) {
	res, err := e.store.ClaimResult(ctx, resultID, resume)
	if err != nil {
		return nil, err
	}

	bets, err := e.store.PendingBets(ctx, res.LotteryType, res.DrawDate)
	if err != nil {
		return nil, err
	}

	sum := &Summary{ResultID: res.ID}
	for _, bet := range bets {
		if err := ctx.Err(); err != nil {
			// lote interrompido: resultado fica PROCESSING e pode ser retomado
			return nil, err
		}
		e.settleOne(ctx, bet, res.Numbers, sum)
	}

	if err := e.store.FinalizeResult(ctx, res.ID); err != nil {
		return nil, err
	}

	e.log.Info("draw settled",
		zap.String("resultId", res.ID),
		zap.String("lotteryType", res.LotteryType),
		zap.String("drawDate", res.DrawDate),
		zap.Int("won", sum.WonCount),
		zap.Int("lost", sum.LostCount),
		zap.Int("errors", sum.ErrorCount),
		zap.Int64("totalPayoutCents", sum.TotalPayoutCents),
	)
	return sum, nil
}

func (e *Engine) settleOne(ctx context.Context, bet Bet, draw lottery.DrawNumbers, sum *Summary) {
	bt, err := lottery.Parse(bet.BetType)
	if err != nil {
		e.markError(ctx, bet, "unknown bet type", sum)
		return
	}

	won, err := lottery.Match(bt, bet.Numbers, draw)
	if err != nil {
		e.markError(ctx, bet, err.Error(), sum)
		return
	}

	if !won {
		if err := e.store.SettleLoss(ctx, bet.ID); err != nil {
			e.markError(ctx, bet, "settle loss: "+err.Error(), sum)
			return
		}
		sum.LostCount++
		return
	}

	// paga sempre o rate congelado na compra; edição posterior da
	// tabela de rates nunca altera pagamento histórico
	payout := bet.PotentialWinCents
	if payout <= 0 {
		e.markError(ctx, bet, "missing rate at placement time", sum)
		return
	}
	if err := e.store.SettleWin(ctx, bet, payout); err != nil {
		e.markError(ctx, bet, "settle win: "+err.Error(), sum)
		return
	}
	sum.WonCount++
	sum.TotalPayoutCents += payout
}

func (e *Engine) markError(ctx context.Context, bet Bet, reason string, sum *Summary) {
	sum.ErrorCount++
	e.log.Warn("bet skipped for manual review",
		zap.String("betId", bet.ID),
		zap.String("betType", bet.BetType),
		zap.String("reason", reason),
	)
	if err := e.store.MarkBetError(ctx, bet.ID, reason); err != nil {
		e.log.Error("mark bet error failed", zap.String("betId", bet.ID), zap.Error(err))
	}
}
