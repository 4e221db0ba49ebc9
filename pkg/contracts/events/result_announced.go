package events

// Evento publicado pelo admin-service quando um resultado de sorteio é
// cadastrado e liberado para liquidação.
type ResultAnnounced struct {
	ResultID    string `json:"result_id"`
	LotteryType string `json:"lottery_type"` // ex: "THAI_GOV"
	DrawDate    string `json:"draw_date"`    // "YYYY-MM-DD"
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
