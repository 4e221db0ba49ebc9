package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/lotto-bet-platform-poc/internal/settlement"
	skafka "github.com/radieske/lotto-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/lotto-bet-platform-poc/pkg/contracts/events"
)

// Consumer consome eventos result_announced do Kafka e dispara a engine
// de liquidação. Callbacks de métricas podem ser usadas para monitorar
// cada etapa.
type Consumer struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Engine *settlement.Engine
	DLQ    *kafka.Writer // opcional

	OnConsumed func()       // métricas (counter++)
	OnSettled  func()       // métricas
	OnError    func(string) // métricas por fase

	// OnAfterSettle roda após liquidação bem-sucedida (broadcast, evento bet_settled)
	OnAfterSettle func(events.BetSettled)
}

// Run inicia o loop principal de consumo. Redelivery de um resultado já
// liquidado é esperado (rebalance, retry do producer) e tratado como no-op.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err() // encerra se o contexto for cancelado
			}
			c.Log.Warn("kafka read failed", zap.Error(err))
			if c.OnError != nil {
				c.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if c.OnConsumed != nil {
			c.OnConsumed()
		}

		var ev events.ResultAnnounced
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.Log.Warn("invalid message", zap.Error(err))
			if c.OnError != nil {
				c.OnError("decode")
			}
			continue
		}

		sum, err := c.Engine.Settle(ctx, ev.ResultID, false)
		if err != nil {
			switch {
			case errors.Is(err, settlement.ErrAlreadyProcessed),
				errors.Is(err, settlement.ErrAlreadyProcessing):
				// guarda de idempotência fez o trabalho dela
				c.Log.Info("duplicate result_announced ignored",
					zap.String("resultId", ev.ResultID), zap.Error(err))
			default:
				c.Log.Error("settlement failed",
					zap.String("resultId", ev.ResultID), zap.Error(err))
				if c.OnError != nil {
					c.OnError("settle")
				}
				if c.DLQ != nil {
					_ = skafka.WriteJSON(ctx, c.DLQ, ev.ResultID, m.Value)
				}
			}
			continue
		}

		if c.OnSettled != nil {
			c.OnSettled()
		}
		if c.OnAfterSettle != nil {
			c.OnAfterSettle(events.BetSettled{
				ResultID:         ev.ResultID,
				LotteryType:      ev.LotteryType,
				DrawDate:         ev.DrawDate,
				WonCount:         sum.WonCount,
				LostCount:        sum.LostCount,
				ErrorCount:       sum.ErrorCount,
				TotalPayoutCents: sum.TotalPayoutCents,
				Ts:               time.Now(),
			})
		}
	}
}
