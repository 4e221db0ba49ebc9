package events

import "time"

// Tipos de evento de carteira publicados no tópico "wallet_events".
const (
	WalletDepositRequested    = "DEPOSIT_REQUESTED"
	WalletDepositApproved     = "DEPOSIT_APPROVED"
	WalletDepositRejected     = "DEPOSIT_REJECTED"
	WalletWithdrawalRequested = "WITHDRAWAL_REQUESTED"
	WalletWithdrawalApproved  = "WITHDRAWAL_APPROVED"
	WalletWithdrawalRejected  = "WITHDRAWAL_REJECTED"
)

// Evento de carteira consumido pelo notification-worker.
// A entrega da notificação é fire-and-forget: falha no webhook nunca
// desfaz a operação financeira que gerou o evento.
type WalletEvent struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Type          string    `json:"type"` // ver constantes acima
	AmountCents   int64     `json:"amount_cents"`
	Reference     string    `json:"reference"`
	Ts            time.Time `json:"ts"`
}
