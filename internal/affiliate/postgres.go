package affiliate

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Postgres implementa Store sobre as tabelas users/transactions.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ReferrerOf resolve referred_by (referral code) para o id do indicador.
func (p *Postgres) ReferrerOf(ctx context.Context, userID string) (string, error) {
	var referrer sql.NullString
	err := p.db.QueryRowContext(ctx, `
		SELECT r.id
		FROM users u
		LEFT JOIN users r ON r.referral_code = u.referred_by
		WHERE u.id = $1`, userID).Scan(&referrer)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !referrer.Valid {
		return "", nil
	}
	return referrer.String, nil
}

// CreditCommission credita saldo e affiliate_earnings e grava o ledger,
// tudo na mesma transação. O unique em transactions.reference impede
// crédito duplicado do mesmo evento.
func (p *Postgres) CreditCommission(ctx context.Context, userID string, amountCents int64, level int, reference string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		UPDATE users
		SET balance_cents = balance_cents + $1,
		    affiliate_earnings_cents = affiliate_earnings_cents + $1
		WHERE id = $2`, amountCents, userID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO transactions(id, user_id, type, amount_cents, status, reference, affiliate_level)
		VALUES ($1,$2,'affiliate_commission',$3,'approved',$4,$5)`,
		uuid.NewString(), userID, amountCents, reference, level); err != nil {
		return err
	}

	return tx.Commit()
}
