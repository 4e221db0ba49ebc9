package dto

type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	Reference   string `json:"reference,omitempty"` // ex: id do comprovante
}

type WithdrawRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
}

// ReviewRequest é a ação administrativa sobre um pedido pendente.
type ReviewRequest struct {
	TransactionID string `json:"transactionId"`
	Approve       bool   `json:"approve"`
}

// AdjustRequest é o ajuste manual de saldo (só admin).
type AdjustRequest struct {
	UserID      string `json:"userId"`
	DeltaCents  int64  `json:"delta_cents"`
	Type        string `json:"type"` // deposit | withdrawal
	Reference   string `json:"reference"`
}
