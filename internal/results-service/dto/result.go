package dto

// Result é a visão pública de um resultado de sorteio.
// Só resultados processados ou em processamento aparecem aqui.
type Result struct {
	LotteryType      string `json:"lottery_type"`
	DrawDate         string `json:"draw_date"`
	FirstPrize       string `json:"first_prize"`
	ThreeDigitTop    string `json:"three_digit_top"`
	ThreeDigitFront  string `json:"three_digit_front"`
	ThreeDigitBottom string `json:"three_digit_bottom"`
	TwoDigitTop      string `json:"two_digit_top"`
	TwoDigitBottom   string `json:"two_digit_bottom"`
	Status           string `json:"status"`
	AnnouncedAt      string `json:"announced_at"`
}
