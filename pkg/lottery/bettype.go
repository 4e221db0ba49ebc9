package lottery

import "fmt"

// BetType identifica a modalidade de aposta da loteria tailandesa.
// Taxonomia canônica única: validação de dígitos, tabela de rates e
// regras de conferência usam exatamente esta lista.
type BetType string

const (
	ThreeTop     BetType = "THREE_TOP"     // 3 dígitos exatos no prêmio de 3 (topo)
	ThreeTood    BetType = "THREE_TOOD"    // 3 dígitos em qualquer ordem (topo ou fundo)
	ThreeFront   BetType = "THREE_FRONT"   // 3 dígitos exatos no prêmio da frente
	ThreeBottom  BetType = "THREE_BOTTOM"  // 3 dígitos exatos no prêmio do fundo
	ThreeReverse BetType = "THREE_REVERSE" // 3 dígitos em qualquer ordem (só topo)
	TwoTop       BetType = "TWO_TOP"
	TwoBottom    BetType = "TWO_BOTTOM"
	RunTop       BetType = "RUN_TOP"    // dígito único contido no 1º prêmio
	RunBottom    BetType = "RUN_BOTTOM" // dígito único contido nos 2 do fundo
)

var digitsByType = map[BetType]int{
	ThreeTop:     3,
	ThreeTood:    3,
	ThreeFront:   3,
	ThreeBottom:  3,
	ThreeReverse: 3,
	TwoTop:       2,
	TwoBottom:    2,
	RunTop:       1,
	RunBottom:    1,
}

// All retorna as modalidades conhecidas, em ordem estável.
func All() []BetType {
	return []BetType{
		ThreeTop, ThreeTood, ThreeFront, ThreeBottom, ThreeReverse,
		TwoTop, TwoBottom, RunTop, RunBottom,
	}
}

// Parse valida uma modalidade vinda de fora (request, banco).
func Parse(s string) (BetType, error) {
	bt := BetType(s)
	if _, ok := digitsByType[bt]; !ok {
		return "", fmt.Errorf("unknown bet type %q", s)
	}
	return bt, nil
}

// Digits retorna a quantidade de dígitos exigida pela modalidade.
func (b BetType) Digits() (int, error) {
	n, ok := digitsByType[b]
	if !ok {
		return 0, fmt.Errorf("unknown bet type %q", string(b))
	}
	return n, nil
}

// ValidNumbers verifica tamanho e conteúdo (somente dígitos 0-9,
// com zeros à esquerda preservados).
func (b BetType) ValidNumbers(numbers string) error {
	n, err := b.Digits()
	if err != nil {
		return err
	}
	if len(numbers) != n {
		return fmt.Errorf("bet type %s requires %d digits, got %q", string(b), n, numbers)
	}
	for _, r := range numbers {
		if r < '0' || r > '9' {
			return fmt.Errorf("numbers must contain only digits, got %q", numbers)
		}
	}
	return nil
}
