package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/lotto-bet-platform-poc/internal/lotto-service/service"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrUnknownReferral   = errors.New("referral code does not exist")
	ErrCircularReferral  = errors.New("referral chain would form a cycle")
	maxReferralChainHops = 16
)

const maxReferralCodeAttempts = 3

// Postgres implementa a persistência do lotto-service: apostas, usuários
// e as regras consultadas na compra (bloqueios e limites).
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// InsertBatch grava o lote numa única transação: débito condicional do
// saldo (sem read-modify-write, sem corrida entre compras do mesmo
// usuário) e uma aposta + uma transaction por item.
func (p *Postgres) InsertBatch(ctx context.Context, userID, lotteryType, drawDate, batchRef string, items []service.BetIntent) ([]string, error) {
	var total int64
	for _, it := range items {
		total += it.AmountCents
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET balance_cents = balance_cents - $1 WHERE id=$2 AND balance_cents >= $1`,
		total, userID)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, service.ErrInsufficientBalance
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		id := uuid.NewString()
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO bets (id, user_id, lottery_type, bet_type, numbers,
			                  amount_cents, potential_win_cents, status, draw_date, batch_ref)
			VALUES ($1,$2,$3,$4,$5,$6,$7,'PENDING',$8,$9)`,
			id, userID, lotteryType, string(it.BetType), it.Numbers,
			it.AmountCents, it.PotentialWinCents, drawDate, batchRef); err != nil {
			return nil, err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO transactions(id, user_id, type, amount_cents, status, reference)
			VALUES ($1,$2,'bet',$3,'approved',$4)`,
			uuid.NewString(), userID, -it.AmountCents, "bet:"+id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListBets projeta as apostas do usuário, com filtro opcional de status.
func (p *Postgres) ListBets(ctx context.Context, userID, status string) ([]Bet, error) {
	q := `
		SELECT id, user_id, lottery_type, bet_type, numbers, amount_cents,
		       potential_win_cents, COALESCE(win_amount_cents,0), status, draw_date::text, created_at
		FROM bets WHERE user_id=$1`
	args := []any{userID}
	if status != "" {
		q += ` AND status=$2`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.LotteryType, &b.BetType, &b.Numbers,
			&b.AmountCents, &b.PotentialWinCents, &b.WinAmountCents, &b.Status, &b.DrawDate, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// IsBlocked consulta bloqueio vigente: bet_type NULL bloqueia todas as
// modalidades; janela de agenda ausente significa bloqueio permanente.
func (p *Postgres) IsBlocked(ctx context.Context, lotteryType, number, betType string, at time.Time) (bool, error) {
	var blocked bool
	err := p.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blocked_numbers
			WHERE lottery_type=$1 AND number=$2 AND is_active
			  AND (bet_type IS NULL OR bet_type=$3)
			  AND (start_date IS NULL OR start_date <= $4)
			  AND (end_date IS NULL OR end_date >= $4)
		)`, lotteryType, number, betType, at).Scan(&blocked)
	return blocked, err
}

// ActiveLimit retorna o menor teto configurado para o número
// (lottery_types vazio se aplica a todas as loterias).
func (p *Postgres) ActiveLimit(ctx context.Context, lotteryType, number string, at time.Time) (int64, bool, error) {
	var max sql.NullInt64
	err := p.db.QueryRowContext(ctx, `
		SELECT MIN(max_amount_cents) FROM bet_limits
		WHERE number=$1 AND is_active
		  AND (cardinality(lottery_types)=0 OR $2 = ANY(lottery_types))
		  AND (start_date IS NULL OR start_date <= $3)
		  AND (end_date IS NULL OR end_date >= $3)`,
		number, lotteryType, at).Scan(&max)
	if err != nil {
		return 0, false, err
	}
	if !max.Valid {
		return 0, false, nil
	}
	return max.Int64, true, nil
}

// CurrentStake soma o stake já registrado no número para o sorteio.
func (p *Postgres) CurrentStake(ctx context.Context, lotteryType, drawDate, number string) (int64, error) {
	var total int64
	err := p.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents),0) FROM bets
		WHERE lottery_type=$1 AND draw_date=$2 AND numbers=$3`,
		lotteryType, drawDate, number).Scan(&total)
	return total, err
}

// CreateUser cadastra o apostador com referral code próprio e valida a
// cadeia de indicação no cadastro (nunca na hora da comissão).
// Username duplicado é detectado pela constraint, não por pré-check:
// duas requisições concorrentes com o mesmo nome recebem o mesmo 409.
func (p *Postgres) CreateUser(ctx context.Context, username, passwordHash, referredBy string) (*User, error) {
	if referredBy != "" {
		if err := p.validateReferralChain(ctx, referredBy); err != nil {
			return nil, err
		}
	}

	// colisão do código curto é rara mas possível: gera outro e repete
	for attempt := 0; attempt < maxReferralCodeAttempts; attempt++ {
		u := &User{
			ID:           uuid.NewString(),
			Username:     username,
			PasswordHash: passwordHash,
			ReferralCode: newReferralCode(),
			ReferredBy:   referredBy,
		}

		_, err := p.db.ExecContext(ctx, `
			INSERT INTO users (id, username, password_hash, balance_cents, referral_code, referred_by, affiliate_earnings_cents)
			VALUES ($1,$2,$3,0,$4,NULLIF($5,''),0)`,
			u.ID, u.Username, u.PasswordHash, u.ReferralCode, u.ReferredBy)
		if err == nil {
			return u, nil
		}
		switch classifyUserConflict(err) {
		case userConflictUsername:
			return nil, ErrUsernameTaken
		case userConflictReferralCode:
			continue
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return nil, fmt.Errorf("insert user: referral code collisions exhausted")
}

type userConflict int

const (
	userConflictNone userConflict = iota
	userConflictUsername
	userConflictReferralCode
)

// classifyUserConflict mapeia unique_violation por constraint.
func classifyUserConflict(err error) userConflict {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return userConflictNone
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return userConflictUsername
	case "users_referral_code_key":
		return userConflictReferralCode
	}
	return userConflictNone
}

// validateReferralChain confirma que o código existe e que a cadeia a
// partir dele termina (defesa contra dados antigos corrompidos).
func (p *Postgres) validateReferralChain(ctx context.Context, code string) error {
	current := code
	for hop := 0; hop < maxReferralChainHops; hop++ {
		var next sql.NullString
		err := p.db.QueryRowContext(ctx,
			`SELECT referred_by FROM users WHERE referral_code=$1`, current).Scan(&next)
		if err == sql.ErrNoRows {
			if hop == 0 {
				return ErrUnknownReferral
			}
			return nil // cadeia termina em código órfão, aceitável
		}
		if err != nil {
			return err
		}
		if !next.Valid || next.String == "" {
			return nil
		}
		if next.String == code {
			return ErrCircularReferral
		}
		current = next.String
	}
	return ErrCircularReferral
}

func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	var referredBy sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, balance_cents, referral_code, referred_by, affiliate_earnings_cents, created_at
		FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.BalanceCents, &u.ReferralCode, &referredBy, &u.AffiliateEarningsCents, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ReferredBy = referredBy.String
	return &u, nil
}

func newReferralCode() string {
	// 8 primeiros hex do uuid: curto o bastante pra compartilhar, único o bastante pro POC
	return uuid.NewString()[:8]
}
