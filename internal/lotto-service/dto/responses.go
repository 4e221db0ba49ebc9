package dto

type AuthResponse struct {
	UserID       string `json:"userId"`
	Token        string `json:"token"`
	ReferralCode string `json:"referral_code"`
}

type PlacedBet struct {
	BetID             string `json:"betId"`
	BetType           string `json:"bet_type"`
	Numbers           string `json:"numbers"`
	AmountCents       int64  `json:"amount_cents"`
	PotentialWinCents int64  `json:"potential_win_cents"`
}

type PlaceBetsResponse struct {
	BatchID    string      `json:"batchId"`
	Bets       []PlacedBet `json:"bets"`
	TotalCents int64       `json:"total_cents"`
}

type BetResponse struct {
	BetID             string `json:"betId"`
	LotteryType       string `json:"lottery_type"`
	BetType           string `json:"bet_type"`
	Numbers           string `json:"numbers"`
	AmountCents       int64  `json:"amount_cents"`
	PotentialWinCents int64  `json:"potential_win_cents"`
	WinAmountCents    int64  `json:"win_amount_cents,omitempty"`
	Status            string `json:"status"`
	DrawDate          string `json:"draw_date"`
}

type RateResponse struct {
	BetType    string  `json:"bet_type"`
	Multiplier float64 `json:"multiplier"`
}
