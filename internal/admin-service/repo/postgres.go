package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrDuplicateResult = errors.New("result already exists for lottery and draw date")

// DrawResult é o resultado cadastrado pelo back office.
type DrawResult struct {
	ID               string
	LotteryType      string
	DrawDate         string
	FirstPrize       string
	ThreeDigitTop    string
	ThreeDigitFront  string
	ThreeDigitBottom string
	TwoDigitTop      string
	TwoDigitBottom   string
	Status           string
	IsProcessed      bool
}

// Postgres implementa as operações administrativas: resultados, rates,
// números bloqueados e limites de aposta.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreateResult insere o resultado como UNPROCESSED. O unique em
// (lottery_type, draw_date) impede cadastro duplicado do mesmo sorteio.
func (p *Postgres) CreateResult(ctx context.Context, r *DrawResult) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO draw_results (id, lottery_type, draw_date, first_prize,
		                          three_digit_top, three_digit_front, three_digit_bottom,
		                          two_digit_top, two_digit_bottom, status, is_processed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'UNPROCESSED',FALSE)`,
		id, r.LotteryType, r.DrawDate, r.FirstPrize,
		r.ThreeDigitTop, r.ThreeDigitFront, r.ThreeDigitBottom,
		r.TwoDigitTop, r.TwoDigitBottom,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return "", ErrDuplicateResult
		}
		return "", err
	}
	return id, nil
}

func (p *Postgres) GetResult(ctx context.Context, id string) (*DrawResult, error) {
	var r DrawResult
	err := p.db.QueryRowContext(ctx, `
		SELECT id, lottery_type, draw_date::text, first_prize,
		       three_digit_top, three_digit_front, three_digit_bottom,
		       two_digit_top, two_digit_bottom, status, is_processed
		FROM draw_results WHERE id=$1`, id).
		Scan(&r.ID, &r.LotteryType, &r.DrawDate, &r.FirstPrize,
			&r.ThreeDigitTop, &r.ThreeDigitFront, &r.ThreeDigitBottom,
			&r.TwoDigitTop, &r.TwoDigitBottom, &r.Status, &r.IsProcessed)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) ListResults(ctx context.Context, lotteryType string) ([]DrawResult, error) {
	q := `
		SELECT id, lottery_type, draw_date::text, first_prize,
		       three_digit_top, three_digit_front, three_digit_bottom,
		       two_digit_top, two_digit_bottom, status, is_processed
		FROM draw_results`
	args := []any{}
	if lotteryType != "" {
		q += ` WHERE lottery_type=$1`
		args = append(args, lotteryType)
	}
	q += ` ORDER BY draw_date DESC`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DrawResult
	for rows.Next() {
		var r DrawResult
		if err := rows.Scan(&r.ID, &r.LotteryType, &r.DrawDate, &r.FirstPrize,
			&r.ThreeDigitTop, &r.ThreeDigitFront, &r.ThreeDigitBottom,
			&r.TwoDigitTop, &r.TwoDigitBottom, &r.Status, &r.IsProcessed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertRate edita o multiplicador de uma modalidade. Vale só para
// apostas futuras: potential_win já congelado nunca é reescrito.
func (p *Postgres) UpsertRate(ctx context.Context, betType string, multiplier float64) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bet_rates (bet_type, multiplier, is_active)
		VALUES ($1,$2,TRUE)
		ON CONFLICT (bet_type) DO UPDATE SET
		  multiplier = EXCLUDED.multiplier,
		  is_active  = TRUE,
		  updated_at = NOW()`, betType, multiplier)
	return err
}

// CreateBlockedNumber cadastra um bloqueio; bet_type vazio vira NULL
// (bloqueia todas as modalidades) e agenda ausente é bloqueio permanente.
func (p *Postgres) CreateBlockedNumber(ctx context.Context, lotteryType, number, betType, startDate, endDate string) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO blocked_numbers (id, lottery_type, number, bet_type, is_active, start_date, end_date)
		VALUES ($1,$2,$3,NULLIF($4,''),TRUE,NULLIF($5,'')::date,NULLIF($6,'')::date)`,
		id, lotteryType, number, betType, startDate, endDate)
	return id, err
}

// DeactivateBlockedNumber desativa sem apagar (mantém histórico).
func (p *Postgres) DeactivateBlockedNumber(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE blocked_numbers SET is_active=FALSE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateBetLimit cadastra um teto de stake agregado para um número.
func (p *Postgres) CreateBetLimit(ctx context.Context, number string, maxAmountCents int64, lotteryTypes []string, startDate, endDate string) (string, error) {
	id := uuid.NewString()
	if lotteryTypes == nil {
		lotteryTypes = []string{}
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bet_limits (id, number, max_amount_cents, lottery_types, is_active, start_date, end_date)
		VALUES ($1,$2,$3,$4,TRUE,NULLIF($5,'')::date,NULLIF($6,'')::date)`,
		id, number, maxAmountCents, pq.Array(lotteryTypes), startDate, endDate)
	return id, err
}

func (p *Postgres) DeactivateBetLimit(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE bet_limits SET is_active=FALSE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ErrorBets lista apostas em ERROR de um sorteio, para revisão manual.
func (p *Postgres) ErrorBets(ctx context.Context, lotteryType, drawDate string) ([]ErrorBet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, bet_type, numbers, amount_cents, COALESCE(error_reason,'')
		FROM bets
		WHERE lottery_type=$1 AND draw_date=$2 AND status='ERROR'
		ORDER BY created_at`, lotteryType, drawDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ErrorBet
	for rows.Next() {
		var b ErrorBet
		if err := rows.Scan(&b.ID, &b.UserID, &b.BetType, &b.Numbers, &b.AmountCents, &b.Reason); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type ErrorBet struct {
	ID          string `json:"betId"`
	UserID      string `json:"userId"`
	BetType     string `json:"bet_type"`
	Numbers     string `json:"numbers"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}
