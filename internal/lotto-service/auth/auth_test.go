package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	tok, err := m.IssueToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := m.ValidateToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("userID = %q, want user-1", claims.UserID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, _ := NewManager("secret-a", time.Hour).IssueToken("user-1")
	if _, err := NewManager("secret-b", time.Hour).ValidateToken(tok); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	tok, _ := m.IssueToken("user-1")
	if _, err := m.ValidateToken(tok); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestMiddleware(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserID(r.Context())
	}))

	// sem header
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d, want 401", rec.Code)
	}

	// token válido
	tok, _ := m.IssueToken("user-9")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || seen != "user-9" {
		t.Errorf("status = %d, userID = %q", rec.Code, seen)
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(h, "s3cret") {
		t.Error("correct password rejected")
	}
	if CheckPassword(h, "wrong") {
		t.Error("wrong password accepted")
	}
}
