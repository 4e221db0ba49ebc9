package dto

import "time"

type BalanceResponse struct {
	UserID       string `json:"userId"`
	BalanceCents int64  `json:"balance_cents"`
}

type TransactionResponse struct {
	TransactionID string    `json:"transactionId"`
	UserID        string    `json:"userId"`
	Type          string    `json:"type"`
	AmountCents   int64     `json:"amount_cents"`
	Status        string    `json:"status"`
	Reference     string    `json:"reference"`
	CreatedAt     time.Time `json:"created_at"`
}
