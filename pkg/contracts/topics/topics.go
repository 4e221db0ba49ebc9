package topics

const (
	// Sorteios
	ResultAnnounced = "result_announced"
	BetSettled      = "bet_settled"

	// Carteira (depósitos/saques para o notification-worker)
	WalletEvents = "wallet_events"

	// DLQs
	ResultAnnouncedDLQ = "result_announced_dlq"
	WalletEventsDLQ    = "wallet_events_dlq"
)
