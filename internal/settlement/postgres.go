package settlement

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Postgres implementa Store sobre o schema compartilhado dos serviços.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// staleClaimInterval define quando um claim PROCESSING pode ser retomado.
const staleClaimInterval = "5 minutes"

// ClaimResult toma posse do resultado via CAS no status.
// Sem linha atualizada, o status atual decide o erro retornado.
func (p *Postgres) ClaimResult(ctx context.Context, resultID string, resume bool) (*DrawResult, error) {
	var r DrawResult
	err := p.db.QueryRowContext(ctx, `
		UPDATE draw_results
		SET status='PROCESSING', processing_started_at=NOW()
		WHERE id=$1
		  AND (status='UNPROCESSED'
		       OR (status='PROCESSING' AND $2 AND processing_started_at < NOW() - INTERVAL '`+staleClaimInterval+`'))
		RETURNING id, lottery_type, draw_date::text, first_prize,
		          three_digit_top, three_digit_front, three_digit_bottom,
		          two_digit_top, two_digit_bottom, status, is_processed`,
		resultID, resume,
	).Scan(
		&r.ID, &r.LotteryType, &r.DrawDate, &r.Numbers.FirstPrize,
		&r.Numbers.ThreeDigitTop, &r.Numbers.ThreeDigitFront, &r.Numbers.ThreeDigitBottom,
		&r.Numbers.TwoDigitTop, &r.Numbers.TwoDigitBottom, &r.Status, &r.IsProcessed,
	)
	if err == nil {
		return &r, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	var status string
	err = p.db.QueryRowContext(ctx, `SELECT status FROM draw_results WHERE id=$1`, resultID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	switch status {
	case ResultProcessed:
		return nil, ErrAlreadyProcessed
	case ResultProcessing:
		return nil, ErrAlreadyProcessing
	default:
		return nil, ErrResultNotFound
	}
}

// PendingBets lista apostas PENDING do sorteio, na ordem de criação.
func (p *Postgres) PendingBets(ctx context.Context, lotteryType, drawDate string) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, lottery_type, bet_type, numbers,
		       amount_cents, potential_win_cents, status, draw_date::text
		FROM bets
		WHERE lottery_type=$1 AND draw_date=$2 AND status='PENDING'
		ORDER BY created_at`,
		lotteryType, drawDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.LotteryType, &b.BetType, &b.Numbers,
			&b.AmountCents, &b.PotentialWinCents, &b.Status, &b.DrawDate); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SettleWin marca WON, credita o saldo e grava o ledger na mesma transação.
// O UPDATE condicional em status='PENDING' torna o re-run inofensivo:
// aposta já liquidada não paga de novo.
func (p *Postgres) SettleWin(ctx context.Context, bet Bet, payoutCents int64) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE bets SET status='WON', win_amount_cents=$1, settled_at=NOW()
		WHERE id=$2 AND status='PENDING'`,
		payoutCents, bet.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil // já liquidada numa rodada anterior
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET balance_cents = balance_cents + $1 WHERE id=$2`,
		payoutCents, bet.UserID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO transactions(id, user_id, type, amount_cents, status, reference)
		VALUES ($1,$2,'win',$3,'approved',$4)`,
		uuid.NewString(), bet.UserID, payoutCents, "win:"+bet.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// SettleLoss marca LOST; perda não movimenta saldo.
func (p *Postgres) SettleLoss(ctx context.Context, betID string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE bets SET status='LOST', settled_at=NOW() WHERE id=$1 AND status='PENDING'`, betID)
	return err
}

// MarkBetError marca ERROR com o motivo, sem movimentar saldo.
func (p *Postgres) MarkBetError(ctx context.Context, betID string, reason string) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE bets SET status='ERROR', error_reason=$1, settled_at=NOW() WHERE id=$2 AND status='PENDING'`,
		reason, betID)
	return err
}

// FinalizeResult fecha a máquina de estados: PROCESSING -> PROCESSED.
func (p *Postgres) FinalizeResult(ctx context.Context, resultID string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE draw_results SET status='PROCESSED', is_processed=TRUE, processed_at=NOW()
		WHERE id=$1 AND status='PROCESSING'`, resultID)
	return err
}
