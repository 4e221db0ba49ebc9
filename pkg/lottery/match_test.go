package lottery

import "testing"

var draw = DrawNumbers{
	FirstPrize:       "123456",
	ThreeDigitTop:    "456",
	ThreeDigitFront:  "789",
	ThreeDigitBottom: "321",
	TwoDigitTop:      "45",
	TwoDigitBottom:   "56",
}

func TestMatchExactTypes(t *testing.T) {
	cases := []struct {
		bt      BetType
		numbers string
		want    bool
	}{
		{ThreeTop, "456", true},
		{ThreeTop, "465", false}, // ordem importa no topo exato
		{ThreeFront, "789", true},
		{ThreeFront, "456", false},
		{ThreeBottom, "321", true},
		{ThreeBottom, "123", false},
		{TwoTop, "45", true},
		{TwoTop, "54", false},
		{TwoBottom, "56", true},
		{TwoBottom, "65", false},
	}
	for _, c := range cases {
		got, err := Match(c.bt, c.numbers, draw)
		if err != nil {
			t.Fatalf("Match(%s, %s): %v", c.bt, c.numbers, err)
		}
		if got != c.want {
			t.Errorf("Match(%s, %s) = %v, want %v", c.bt, c.numbers, got, c.want)
		}
	}
}

func TestMatchPermutationTypes(t *testing.T) {
	// tood aceita permutação do topo e do fundo
	for _, n := range []string{"456", "465", "546", "645", "321", "123", "213"} {
		if ok, _ := Match(ThreeTood, n, draw); !ok {
			t.Errorf("THREE_TOOD %s should win", n)
		}
	}
	if ok, _ := Match(ThreeTood, "457", draw); ok {
		t.Error("THREE_TOOD 457 should lose")
	}
	// multiconjunto: "445" não é permutação de "456"
	if ok, _ := Match(ThreeTood, "445", draw); ok {
		t.Error("THREE_TOOD 445 should lose")
	}

	// reverse só confere contra o topo
	if ok, _ := Match(ThreeReverse, "645", draw); !ok {
		t.Error("THREE_REVERSE 645 should win")
	}
	if ok, _ := Match(ThreeReverse, "123", draw); ok {
		t.Error("THREE_REVERSE 123 only matches the top number")
	}
}

func TestMatchRunTypes(t *testing.T) {
	for d, want := range map[string]bool{"1": true, "4": true, "6": true, "7": false, "0": false} {
		if got, _ := Match(RunTop, d, draw); got != want {
			t.Errorf("RUN_TOP %s = %v, want %v", d, got, want)
		}
	}
	if ok, _ := Match(RunBottom, "5", draw); !ok {
		t.Error(`RUN_BOTTOM "5" should win against two-digit bottom "56"`)
	}
	if ok, _ := Match(RunBottom, "1", draw); ok {
		t.Error(`RUN_BOTTOM "1" should lose against "56"`)
	}
}

func TestMatchUnknownType(t *testing.T) {
	if _, err := Match(BetType("FOUR_TOP"), "1234", draw); err == nil {
		t.Error("expected error for unknown bet type")
	}
}

func TestValidNumbers(t *testing.T) {
	if err := ThreeTop.ValidNumbers("007"); err != nil {
		t.Errorf("leading zeros are valid: %v", err)
	}
	if err := ThreeTop.ValidNumbers("12"); err == nil {
		t.Error("expected digit count error")
	}
	if err := TwoTop.ValidNumbers("5a"); err == nil {
		t.Error("expected non-digit error")
	}
	if err := RunTop.ValidNumbers("7"); err != nil {
		t.Errorf("single digit run: %v", err)
	}
}

func TestParse(t *testing.T) {
	for _, bt := range All() {
		if _, err := Parse(string(bt)); err != nil {
			t.Errorf("Parse(%s): %v", bt, err)
		}
	}
	if _, err := Parse("THREE_TOD"); err == nil {
		t.Error("legacy alias THREE_TOD is not part of the canonical taxonomy")
	}
}
