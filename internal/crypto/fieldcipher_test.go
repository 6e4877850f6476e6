package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/J2WFFDev/custody-manager/internal/domain/custody"
)

func TestNewRequiresSecret(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("empty secret must fail")
	}
}

func TestRoundTrip(t *testing.T) {
	c, err := New("test-secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, plaintext := range []string{"SN-4411", "", "úníçødé-серийный-番号"} {
		token, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("encrypt %q: %v", plaintext, err)
		}
		got, err := c.Decrypt(token)
		if err != nil {
			t.Fatalf("decrypt %q: %v", plaintext, err)
		}
		if got != plaintext {
			t.Fatalf("round trip: got %q, want %q", got, plaintext)
		}
	}
}

func TestEncryptNonDeterministic(t *testing.T) {
	c, err := New("test-secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	a, err := c.Encrypt("SN-4411")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	b, err := c.Encrypt("SN-4411")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if a == b {
		t.Fatalf("equal plaintexts must not produce equal tokens")
	}
}

func TestDecryptFailures(t *testing.T) {
	c, err := New("test-secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	token, err := c.Encrypt("SN-4411")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"too short", "AAAA"},
		{"tampered", tamper(token)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.Decrypt(tt.token); !errors.Is(err, custody.ErrDecryption) {
				t.Fatalf("expected ErrDecryption, got %v", err)
			}
		})
	}

	other, err := New("other-secret")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := other.Decrypt(token); !errors.Is(err, custody.ErrDecryption) {
		t.Fatalf("wrong secret: expected ErrDecryption, got %v", err)
	}
}

func tamper(token string) string {
	last := token[len(token)-1]
	replacement := "A"
	if last == 'A' {
		replacement = "B"
	}
	return strings.TrimSuffix(token, string(last)) + replacement
}
