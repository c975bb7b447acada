package helpers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret", 7*24*time.Hour)
	token, expires, err := tm.Issue(42, "ada@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if d := time.Until(expires); d < 7*24*time.Hour-time.Minute {
		t.Errorf("expiry too short: %v", d)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "ada@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)
	foreign, _, _ := other.Issue(1, "x@example.com")

	expired := NewTokenManager("test-secret", -time.Hour)
	old, _, _ := expired.Issue(1, "x@example.com")

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": 1}).SignedString([]byte("test-secret"))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": 1, "exp": time.Now().Add(time.Hour).Unix()}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}).SignedString([]byte("test-secret"))

	tests := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"expired":        old,
		"no expiry":      noExp,
		"alg none":       none,
		"missing userId": noUser,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := tm.Validate(token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestValidateFallsBackToSubject(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "17",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != 17 {
		t.Errorf("UserID = %d, want 17", claims.UserID)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter22" || !strings.HasPrefix(hash, "$2a$10$") {
		t.Errorf("unexpected hash %q", hash)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("wrong password accepted")
	}
}

func TestGenerateBookingReference(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := GenerateBookingReference()
		if !strings.HasPrefix(ref, ReferencePrefix) || len(ref) != len(ReferencePrefix)+32 {
			t.Fatalf("malformed reference %q", ref)
		}
		if ref != strings.ToUpper(ref) {
			t.Fatalf("reference not upper-case: %q", ref)
		}
		if seen[ref] {
			t.Fatalf("duplicate reference %q", ref)
		}
		seen[ref] = true
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def", "abc.def", true},
		{"bearer   abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("BearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStringTrim(t *testing.T) {
	if got := StringTrim("  Bali   Paradise \n"); got != "Bali Paradise" {
		t.Errorf("StringTrim = %q", got)
	}
}
