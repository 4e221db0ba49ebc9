package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

type CreateResultRequest struct {
	LotteryType string `json:"lottery_type" validate:"required"`
	DrawDate    string `json:"draw_date" validate:"required,datetime=2006-01-02"`
	FirstPrize  string `json:"first_prize" validate:"required,len=6,numeric"`
	// Derivados do primeiro prêmio quando omitidos (sufixos de 3 e 2 dígitos)
	ThreeDigitTop    string `json:"three_digit_top,omitempty" validate:"omitempty,len=3,numeric"`
	ThreeDigitFront  string `json:"three_digit_front" validate:"required,len=3,numeric"`
	ThreeDigitBottom string `json:"three_digit_bottom" validate:"required,len=3,numeric"`
	TwoDigitTop      string `json:"two_digit_top,omitempty" validate:"omitempty,len=2,numeric"`
	TwoDigitBottom   string `json:"two_digit_bottom" validate:"required,len=2,numeric"`
}

func (r *CreateResultRequest) Validate() error { return validate.Struct(r) }

type ResultResponse struct {
	ResultID         string `json:"resultId"`
	LotteryType      string `json:"lottery_type"`
	DrawDate         string `json:"draw_date"`
	FirstPrize       string `json:"first_prize"`
	ThreeDigitTop    string `json:"three_digit_top"`
	ThreeDigitFront  string `json:"three_digit_front"`
	ThreeDigitBottom string `json:"three_digit_bottom"`
	TwoDigitTop      string `json:"two_digit_top"`
	TwoDigitBottom   string `json:"two_digit_bottom"`
	Status           string `json:"status"`
	IsProcessed      bool   `json:"is_processed"`
}

type UpsertRateRequest struct {
	Multiplier float64 `json:"multiplier" validate:"required,gt=0"`
}

func (r *UpsertRateRequest) Validate() error { return validate.Struct(r) }

type BlockedNumberRequest struct {
	LotteryType string `json:"lottery_type" validate:"required"`
	Number      string `json:"number" validate:"required,numeric"`
	BetType     string `json:"bet_type,omitempty"` // vazio = bloqueia todas as modalidades
	StartDate   string `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r *BlockedNumberRequest) Validate() error { return validate.Struct(r) }

type BetLimitRequest struct {
	Number         string   `json:"number" validate:"required,numeric"`
	MaxAmountCents int64    `json:"max_amount_cents" validate:"required,gt=0"`
	LotteryTypes   []string `json:"lottery_types"` // vazio = todas
	StartDate      string   `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string   `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r *BetLimitRequest) Validate() error { return validate.Struct(r) }
