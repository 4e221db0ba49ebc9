package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/lotto-bet-platform-poc/internal/results-service/dto"
)

type ReadRepo struct {
	DB *sql.DB
}

// ListLotteryTypes retorna os tipos de loteria com resultado publicado.
func (r *ReadRepo) ListLotteryTypes(ctx context.Context) ([]string, error) {
	const q = `
		SELECT DISTINCT lottery_type
		FROM draw_results
		WHERE status <> 'UNPROCESSED'
		ORDER BY lottery_type;
	`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var lt string
		if err := rows.Scan(&lt); err != nil {
			return nil, err
		}
		out = append(out, lt)
	}
	return out, rows.Err()
}

// ListResults retorna o histórico de resultados de uma loteria, mais recente primeiro.
func (r *ReadRepo) ListResults(ctx context.Context, lotteryType string, limit int) ([]dto.Result, error) {
	const q = `
		SELECT lottery_type, to_char(draw_date, 'YYYY-MM-DD'), first_prize,
		       three_digit_top, three_digit_front, three_digit_bottom,
		       two_digit_top, two_digit_bottom, status,
		       to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM draw_results
		WHERE lottery_type = $1 AND status <> 'UNPROCESSED'
		ORDER BY draw_date DESC
		LIMIT $2;
	`
	rows, err := r.DB.QueryContext(ctx, q, lotteryType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []dto.Result
	for rows.Next() {
		var res dto.Result
		if err := rows.Scan(&res.LotteryType, &res.DrawDate, &res.FirstPrize,
			&res.ThreeDigitTop, &res.ThreeDigitFront, &res.ThreeDigitBottom,
			&res.TwoDigitTop, &res.TwoDigitBottom, &res.Status, &res.AnnouncedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// GetResult retorna o resultado de uma data específica.
func (r *ReadRepo) GetResult(ctx context.Context, lotteryType, drawDate string) (*dto.Result, error) {
	const q = `
		SELECT lottery_type, to_char(draw_date, 'YYYY-MM-DD'), first_prize,
		       three_digit_top, three_digit_front, three_digit_bottom,
		       two_digit_top, two_digit_bottom, status,
		       to_char(created_at, 'YYYY-MM-DD"T"HH24:MI:SSZ')
		FROM draw_results
		WHERE lottery_type = $1 AND draw_date = $2 AND status <> 'UNPROCESSED';
	`
	var res dto.Result
	err := r.DB.QueryRowContext(ctx, q, lotteryType, drawDate).Scan(
		&res.LotteryType, &res.DrawDate, &res.FirstPrize,
		&res.ThreeDigitTop, &res.ThreeDigitFront, &res.ThreeDigitBottom,
		&res.TwoDigitTop, &res.TwoDigitBottom, &res.Status, &res.AnnouncedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
