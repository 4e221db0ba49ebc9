package repo

import "time"

// Bet é o modelo persistido no Postgres.
type Bet struct {
	ID                string
	UserID            string
	LotteryType       string
	BetType           string
	Numbers           string
	AmountCents       int64
	PotentialWinCents int64
	WinAmountCents    int64
	Status            string
	DrawDate          string
	CreatedAt         time.Time
}

// User é o apostador, com saldo e cadeia de indicação.
type User struct {
	ID                     string
	Username               string
	PasswordHash           string
	BalanceCents           int64
	ReferralCode           string
	ReferredBy             string // referral code do indicador ("" se nenhum)
	AffiliateEarningsCents int64
	CreatedAt              time.Time
}
