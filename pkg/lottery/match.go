package lottery

import (
	"fmt"
	"strings"
)

// DrawNumbers agrupa os campos premiados de um sorteio já anunciado.
// Todos os campos são strings de dígitos com zeros à esquerda.
type DrawNumbers struct {
	FirstPrize       string // 6 dígitos
	ThreeDigitTop    string
	ThreeDigitFront  string
	ThreeDigitBottom string
	TwoDigitTop      string
	TwoDigitBottom   string
}

// Match aplica a regra de conferência da modalidade sobre os números
// sorteados. Erro só acontece para modalidade desconhecida; aposta que
// não bate retorna (false, nil).
func Match(bt BetType, numbers string, draw DrawNumbers) (bool, error) {
	switch bt {
	case ThreeTop:
		return numbers == draw.ThreeDigitTop, nil
	case ThreeTood:
		// qualquer ordem, topo ou fundo
		return sameDigits(numbers, draw.ThreeDigitTop) || sameDigits(numbers, draw.ThreeDigitBottom), nil
	case ThreeFront:
		return numbers == draw.ThreeDigitFront, nil
	case ThreeBottom:
		return numbers == draw.ThreeDigitBottom, nil
	case ThreeReverse:
		return sameDigits(numbers, draw.ThreeDigitTop), nil
	case TwoTop:
		return numbers == draw.TwoDigitTop, nil
	case TwoBottom:
		return numbers == draw.TwoDigitBottom, nil
	case RunTop:
		return strings.Contains(draw.FirstPrize, numbers), nil
	case RunBottom:
		return strings.Contains(draw.TwoDigitBottom, numbers), nil
	default:
		return false, fmt.Errorf("unknown bet type %q", string(bt))
	}
}

// sameDigits compara multiconjuntos de dígitos ("123" equivale a "231",
// mas "112" não equivale a "122").
func sameDigits(a, b string) bool {
	if len(a) != len(b) || a == "" {
		return false
	}
	var ca, cb [10]int
	for i := 0; i < len(a); i++ {
		da, db := a[i]-'0', b[i]-'0'
		if da > 9 || db > 9 {
			return false
		}
		ca[da]++
		cb[db]++
	}
	return ca == cb
}
