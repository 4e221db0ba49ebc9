package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

type RegisterRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=32"`
	Password   string `json:"password" validate:"required,min=6"`
	ReferredBy string `json:"referred_by,omitempty"` // referral code de quem indicou (opcional)
}

func (r *RegisterRequest) Validate() error { return validate.Struct(r) }

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error { return validate.Struct(r) }

type BetItem struct {
	BetType     string `json:"bet_type" validate:"required"`
	Numbers     string `json:"numbers" validate:"required"` // string de dígitos, zeros à esquerda contam
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
}

type PlaceBetsRequest struct {
	LotteryType string    `json:"lottery_type" validate:"required"`
	DrawDate    string    `json:"draw_date" validate:"required,datetime=2006-01-02"`
	Items       []BetItem `json:"items" validate:"required,min=1,dive"`
}

func (r *PlaceBetsRequest) Validate() error { return validate.Struct(r) }
