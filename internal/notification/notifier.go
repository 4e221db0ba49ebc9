package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	skafka "github.com/radieske/lotto-bet-platform-poc/internal/shared/kafka"
	"github.com/radieske/lotto-bet-platform-poc/pkg/contracts/events"
)

const deliveryRetries = 3

// Notifier entrega eventos de carteira em um webhook externo
// (gateway de pagamento, CRM, etc).
type Notifier struct {
	WebhookURL string
	Client     *http.Client
}

func NewNotifier(url string) *Notifier {
	return &Notifier{
		WebhookURL: url,
		Client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// Deliver envia o evento via POST. Qualquer status >= 300 conta como falha.
func (n *Notifier) Deliver(ctx context.Context, ev events.WalletEvent) error {
	body, _ := json.Marshal(ev)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook http " + resp.Status)
	}
	return nil
}

// Worker consome wallet_events do Kafka e entrega cada evento no webhook.
// Falha persistente vai para a DLQ, o consumo nunca trava em um evento ruim.
type Worker struct {
	Log      *zap.Logger
	Reader   *kafka.Reader
	Notifier *Notifier
	DLQ      *kafka.Writer // opcional

	OnDelivered func()       // métricas
	OnError     func(string) // métricas por fase
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		m, err := w.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.Log.Warn("kafka read failed", zap.Error(err))
			if w.OnError != nil {
				w.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		var ev events.WalletEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			w.Log.Warn("invalid message", zap.Error(err))
			if w.OnError != nil {
				w.OnError("decode")
			}
			continue
		}

		if err := w.deliverWithRetry(ctx, ev); err != nil {
			w.Log.Error("webhook delivery failed",
				zap.String("transactionId", ev.TransactionID), zap.Error(err))
			if w.OnError != nil {
				w.OnError("deliver")
			}
			if w.DLQ != nil {
				_ = skafka.WriteJSON(ctx, w.DLQ, ev.TransactionID, m.Value)
			}
			continue
		}

		if w.OnDelivered != nil {
			w.OnDelivered()
		}
		w.Log.Info("wallet event delivered",
			zap.String("transactionId", ev.TransactionID),
			zap.String("type", ev.Type))
	}
}

// deliverWithRetry tenta a entrega com backoff simples antes de desistir.
func (w *Worker) deliverWithRetry(ctx context.Context, ev events.WalletEvent) error {
	err := w.Notifier.Deliver(ctx, ev)
	for i := 0; err != nil && i < deliveryRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(300*(i+1)) * time.Millisecond):
		}
		err = w.Notifier.Deliver(ctx, ev)
	}
	return err
}
