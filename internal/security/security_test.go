package security

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("brave-otter-07")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "brave-otter-07" {
		t.Fatal("HashPassword() returned the plain text")
	}
	if !CheckPassword(hash, "brave-otter-07") {
		t.Error("CheckPassword() rejected the right passcode")
	}
	if CheckPassword(hash, "brave-otter-08") {
		t.Error("CheckPassword() accepted the wrong passcode")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("student-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	got, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got != "student-123" {
		t.Errorf("Parse() = %q, want student-123", got)
	}
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, _ := issuer.Issue("student-123")
	expired, _ := NewTokenIssuer("test-secret", -time.Minute).Issue("student-123")

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: mustIssue(t, NewTokenIssuer("other-secret", time.Hour))},
		{name: "tampered", token: token + "x"},
		{name: "expired", token: expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Parse(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func mustIssue(t *testing.T, issuer *TokenIssuer) string {
	t.Helper()
	token, err := issuer.Issue("student-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("fourth request within the window should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("a different IP has its own bucket")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, remote: "10.0.0.1:1234", want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "5.6.7.8"}, remote: "10.0.0.1:1234", want: "5.6.7.8"},
		{name: "remote addr", remote: "9.9.9.9:5555", want: "9.9.9.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
