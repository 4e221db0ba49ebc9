package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyReviewed   = errors.New("transaction already reviewed")
	ErrInvalidType       = errors.New("invalid transaction type")
)

// Tipos de transaction do ledger.
const (
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"
	TypeBet        = "bet"
	TypeWin        = "win"
	TypeCommission = "affiliate_commission"
	TypeAdjustment = "adjustment"
)

// ValidType informa se o tipo pertence ao vocabulário do ledger.
// O ledger é append-only, tipo inventado não entra.
func ValidType(t string) bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeBet, TypeWin, TypeCommission, TypeAdjustment:
		return true
	}
	return false
}

// Transaction é a linha append-only do ledger financeiro.
type Transaction struct {
	ID          string
	UserID      string
	Type        string
	AmountCents int64 // sinalizado: débito negativo, crédito positivo
	Status      string
	Reference   string
	CreatedAt   time.Time
}

// Postgres implementa operações de ledger e saldo em banco.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetBalance retorna o saldo atual do usuário.
func (p *Postgres) GetBalance(ctx context.Context, userID string) (int64, error) {
	var bal int64
	err := p.db.QueryRowContext(ctx, `SELECT balance_cents FROM users WHERE id=$1`, userID).Scan(&bal)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	return bal, err
}

// CreateRequest registra um pedido de depósito/saque com status pending.
// Saldo só muda na aprovação administrativa.
func (p *Postgres) CreateRequest(ctx context.Context, userID, txType string, amountCents int64, reference string) (*Transaction, error) {
	if txType != TypeDeposit && txType != TypeWithdrawal {
		return nil, ErrInvalidType
	}
	t := &Transaction{
		ID:     uuid.NewString(),
		UserID: userID,
		Type:   txType,
		Status: "pending",
	}
	// saque é débito: guarda o valor negativo no ledger
	t.AmountCents = amountCents
	if txType == TypeWithdrawal {
		t.AmountCents = -amountCents
	}
	t.Reference = reference
	if t.Reference == "" {
		t.Reference = txType + ":" + t.ID
	}

	err := p.db.QueryRowContext(ctx, `
		INSERT INTO transactions(id, user_id, type, amount_cents, status, reference)
		VALUES ($1,$2,$3,$4,'pending',$5)
		RETURNING created_at`,
		t.ID, t.UserID, t.Type, t.AmountCents, t.Reference).Scan(&t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Review aplica a decisão administrativa sobre um pedido pendente.
// Aprovação dispara exatamente uma mutação de saldo; rejeição nenhuma.
// Pedido já revisado retorna ErrAlreadyReviewed sem efeito colateral.
func (p *Postgres) Review(ctx context.Context, transactionID string, approve bool) (*Transaction, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var t Transaction
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, type, amount_cents, status, reference, created_at
		FROM transactions WHERE id=$1 FOR UPDATE`, transactionID).
		Scan(&t.ID, &t.UserID, &t.Type, &t.AmountCents, &t.Status, &t.Reference, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if t.Status != "pending" {
		return nil, ErrAlreadyReviewed
	}
	if t.Type != TypeDeposit && t.Type != TypeWithdrawal {
		return nil, ErrInvalidType
	}

	if !approve {
		if _, err = tx.ExecContext(ctx,
			`UPDATE transactions SET status='rejected' WHERE id=$1`, t.ID); err != nil {
			return nil, err
		}
		t.Status = "rejected"
		return &t, tx.Commit()
	}

	if t.AmountCents < 0 {
		// saque: débito condicional, saldo nunca fica negativo
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET balance_cents = balance_cents + $1 WHERE id=$2 AND balance_cents >= -$1`,
			t.AmountCents, t.UserID)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrInsufficientFunds
		}
	} else {
		if _, err = tx.ExecContext(ctx,
			`UPDATE users SET balance_cents = balance_cents + $1 WHERE id=$2`,
			t.AmountCents, t.UserID); err != nil {
			return nil, err
		}
	}

	if _, err = tx.ExecContext(ctx,
		`UPDATE transactions SET status='approved' WHERE id=$1`, t.ID); err != nil {
		return nil, err
	}
	t.Status = "approved"
	return &t, tx.Commit()
}

// AdjustBalance é a operação única de mutação de saldo: atualiza o saldo
// e grava a linha do ledger na mesma transação. O unique em reference
// garante idempotência do ajuste.
func (p *Postgres) AdjustBalance(ctx context.Context, userID string, deltaCents int64, txType, reference string) (*Transaction, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if deltaCents < 0 {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET balance_cents = balance_cents + $1 WHERE id=$2 AND balance_cents >= -$1`,
			deltaCents, userID)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrInsufficientFunds
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET balance_cents = balance_cents + $1 WHERE id=$2`, deltaCents, userID)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrNotFound
		}
	}

	t := &Transaction{
		ID: uuid.NewString(), UserID: userID, Type: txType,
		AmountCents: deltaCents, Status: "approved", Reference: reference,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO transactions(id, user_id, type, amount_cents, status, reference)
		VALUES ($1,$2,$3,$4,'approved',$5)
		RETURNING created_at`,
		t.ID, t.UserID, t.Type, t.AmountCents, t.Reference).Scan(&t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, tx.Commit()
}

// ListTransactions projeta o extrato do usuário, mais recente primeiro.
func (p *Postgres) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount_cents, status, reference, created_at
		FROM transactions WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.AmountCents, &t.Status, &t.Reference, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListPendingRequests lista depósitos/saques aguardando revisão.
func (p *Postgres) ListPendingRequests(ctx context.Context) ([]Transaction, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, type, amount_cents, status, reference, created_at
		FROM transactions
		WHERE status='pending' AND type IN ('deposit','withdrawal')
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.AmountCents, &t.Status, &t.Reference, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
