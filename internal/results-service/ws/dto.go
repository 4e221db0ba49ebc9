package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// LotteryType: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type        string `json:"type"`        // subscribe | unsubscribe | ping
	LotteryType string `json:"lotteryType"` // requerido em subscribe/unsubscribe
}

// SettlementUpdate é o aviso de liquidação concluída enviado aos clientes
// inscritos na loteria correspondente.
type SettlementUpdate struct {
	LotteryType string      `json:"lotteryType"`
	Payload     interface{} `json:"payload"`
}
