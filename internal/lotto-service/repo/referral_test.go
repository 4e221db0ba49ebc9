package repo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// referred_by guarda o código curto do indicador, nunca o id: o código
// gerado precisa caber no vocabulário da coluna (8 hex do uuid).
func TestReferralCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		code := newReferralCode()
		if len(code) != 8 {
			t.Fatalf("len(%q) = %d, want 8", code, len(code))
		}
		for _, c := range code {
			if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
				t.Fatalf("code %q contains non-hex char %q", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes are not varying")
	}

	if _, err := uuid.Parse(newReferralCode()); err == nil {
		t.Fatal("referral code parsed as a full uuid; referred_by stores the short code")
	}
}

func TestClassifyUserConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want userConflict
	}{
		{"username taken", &pq.Error{Code: "23505", Constraint: "users_username_key"}, userConflictUsername},
		{"referral code collision", &pq.Error{Code: "23505", Constraint: "users_referral_code_key"}, userConflictReferralCode},
		{"other unique constraint", &pq.Error{Code: "23505", Constraint: "users_pkey"}, userConflictNone},
		{"other pq error", &pq.Error{Code: "23503"}, userConflictNone},
		{"plain error", errors.New("boom"), userConflictNone},
		{"wrapped pq error", fmt.Errorf("insert user: %w", &pq.Error{Code: "23505", Constraint: "users_username_key"}), userConflictUsername},
		{"nil", nil, userConflictNone},
	}
	for _, tc := range cases {
		if got := classifyUserConflict(tc.err); got != tc.want {
			t.Errorf("%s: classifyUserConflict = %d, want %d", tc.name, got, tc.want)
		}
	}
}
