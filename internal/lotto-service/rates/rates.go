package rates

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/lotto-bet-platform-poc/pkg/lottery"
)

// Rate ausente é erro de configuração: quem chama nunca pode assumir
// multiplicador 1 em silêncio.
var ErrMissingRate = errors.New("no payout rate configured for bet type")

// Source resolve o multiplicador de pagamento de cada modalidade.
// Leitura passa pelo cache Redis com TTL; miss cai no Postgres.
// Edição de rate vale só para apostas futuras (o potential_win é
// congelado na compra), então TTL curto é suficiente.
type Source struct {
	db  *sql.DB
	rdb *redis.Client
	ttl time.Duration
}

func NewSource(db *sql.DB, rdb *redis.Client, ttl time.Duration) *Source {
	return &Source{db: db, rdb: rdb, ttl: ttl}
}

func cacheKey(bt lottery.BetType) string { return "rate:" + string(bt) }

// Rate retorna o multiplicador ativo da modalidade.
func (s *Source) Rate(ctx context.Context, bt lottery.BetType) (float64, error) {
	if s.rdb != nil {
		if v, err := s.rdb.Get(ctx, cacheKey(bt)).Result(); err == nil {
			if m, perr := strconv.ParseFloat(v, 64); perr == nil && m > 0 {
				return m, nil
			}
		}
		// cache indisponível não bloqueia a leitura do banco
	}

	var m float64
	err := s.db.QueryRowContext(ctx,
		`SELECT multiplier FROM bet_rates WHERE bet_type=$1 AND is_active`, string(bt)).Scan(&m)
	if err == sql.ErrNoRows {
		return 0, ErrMissingRate
	}
	if err != nil {
		return 0, err
	}
	if m <= 0 {
		return 0, ErrMissingRate
	}

	if s.rdb != nil {
		_ = s.rdb.Set(ctx, cacheKey(bt), strconv.FormatFloat(m, 'f', -1, 64), s.ttl).Err()
	}
	return m, nil
}

// Invalidate remove a entrada do cache após edição administrativa.
func Invalidate(ctx context.Context, rdb *redis.Client, bt lottery.BetType) error {
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, cacheKey(bt)).Err()
}
