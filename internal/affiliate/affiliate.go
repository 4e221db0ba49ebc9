package affiliate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Percentuais fixos de comissão por nível da cadeia de indicação.
const (
	Level1Percent = 10 // indicador direto
	Level2Percent = 5  // indicador do indicador
)

// Store define a persistência consumida pelo distribuidor de comissão.
type Store interface {
	// ReferrerOf retorna o userID do indicador direto ("" se não houver).
	ReferrerOf(ctx context.Context, userID string) (string, error)
	// CreditCommission credita saldo + affiliate_earnings e grava a
	// transaction "affiliate_commission" numa única transação de banco.
	CreditCommission(ctx context.Context, userID string, amountCents int64, level int, reference string) error
}

// Distributor calcula e credita comissão de afiliado em dois níveis
// sobre o valor apostado.
type Distributor struct {
	log   *zap.Logger
	store Store
}

func NewDistributor(log *zap.Logger, store Store) *Distributor {
	return &Distributor{log: log, store: store}
}

// Distribute percorre referred_by a partir do apostador: um salto para o
// nível 1, mais um para o nível 2. Nível ausente é no-op, nunca erro.
// Ciclos são bloqueados no cadastro, não aqui.
func (d *Distributor) Distribute(ctx context.Context, bettingUserID string, wageredCents int64, reference string) error {
	if wageredCents <= 0 {
		return nil
	}

	level1, err := d.store.ReferrerOf(ctx, bettingUserID)
	if err != nil {
		return fmt.Errorf("lookup level 1 referrer: %w", err)
	}
	if level1 == "" {
		return nil
	}

	l1Amount := wageredCents * Level1Percent / 100
	if l1Amount > 0 {
		if err := d.store.CreditCommission(ctx, level1, l1Amount, 1, "aff:l1:"+reference); err != nil {
			return fmt.Errorf("credit level 1: %w", err)
		}
		d.log.Info("affiliate commission paid",
			zap.String("userId", level1), zap.Int("level", 1), zap.Int64("amountCents", l1Amount))
	}

	level2, err := d.store.ReferrerOf(ctx, level1)
	if err != nil {
		return fmt.Errorf("lookup level 2 referrer: %w", err)
	}
	if level2 == "" {
		return nil
	}

	l2Amount := wageredCents * Level2Percent / 100
	if l2Amount > 0 {
		if err := d.store.CreditCommission(ctx, level2, l2Amount, 2, "aff:l2:"+reference); err != nil {
			return fmt.Errorf("credit level 2: %w", err)
		}
		d.log.Info("affiliate commission paid",
			zap.String("userId", level2), zap.Int("level", 2), zap.Int64("amountCents", l2Amount))
	}

	return nil
}
