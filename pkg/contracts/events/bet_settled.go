package events

import "time"

// Evento emitido pelo settlement-worker após liquidar um sorteio.
type BetSettled struct {
	ResultID         string    `json:"result_id"`
	LotteryType      string    `json:"lottery_type"`
	DrawDate         string    `json:"draw_date"`
	WonCount         int       `json:"won_count"`
	LostCount        int       `json:"lost_count"`
	ErrorCount       int       `json:"error_count"`
	TotalPayoutCents int64     `json:"total_payout_cents"`
	Ts               time.Time `json:"ts"`
}
