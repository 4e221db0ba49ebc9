package settlement

import (
	"errors"

	"github.com/radieske/lotto-bet-platform-poc/pkg/lottery"
)

// Status de aposta.
const (
	BetPending = "PENDING"
	BetWon     = "WON"
	BetLost    = "LOST"
	BetError   = "ERROR" // falha por aposta durante a liquidação, revisão manual
)

// Status do resultado (máquina de estados da liquidação).
const (
	ResultUnprocessed = "UNPROCESSED"
	ResultProcessing  = "PROCESSING"
	ResultProcessed   = "PROCESSED"
)

var (
	ErrResultNotFound   = errors.New("draw result not found")
	ErrAlreadyProcessed = errors.New("draw result already processed")
	// Retornado quando outra liquidação do mesmo sorteio está em andamento.
	ErrAlreadyProcessing = errors.New("draw result settlement already in progress")
)

// Bet é a projeção de aposta que a engine precisa para liquidar.
type Bet struct {
	ID                string
	UserID            string
	LotteryType       string
	BetType           string
	Numbers           string
	AmountCents       int64
	PotentialWinCents int64 // amount × rate congelado na compra
	Status            string
	DrawDate          string // "YYYY-MM-DD"
}

// DrawResult é o resultado anunciado de um sorteio.
type DrawResult struct {
	ID          string
	LotteryType string
	DrawDate    string
	Numbers     lottery.DrawNumbers
	Status      string
	IsProcessed bool
}

// Summary resume uma rodada de liquidação.
type Summary struct {
	ResultID         string `json:"result_id"`
	WonCount         int    `json:"won_count"`
	LostCount        int    `json:"lost_count"`
	ErrorCount       int    `json:"error_count"`
	TotalPayoutCents int64  `json:"total_payout_cents"`
}
