package vault

import (
	"errors"
	"strings"
	"testing"
)

var testKey = []byte("thisis32byteslongsecretkey123456")

func TestSealOpen(t *testing.T) {
	token := "tok1"

	sealed, err := Seal(token, testKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if strings.Contains(sealed, token) {
		t.Fatal("sealed value should not contain the plaintext")
	}

	opened, err := Open(sealed, testKey)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != token {
		t.Errorf("Expected %s, got %s", token, opened)
	}
}

func TestOpenWithWrongKey(t *testing.T) {
	other := []byte("another32byteslongsecretkey65432")

	sealed, err := Seal("secret", testKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	_, err = Open(sealed, other)
	if !errors.Is(err, ErrTampered) {
		t.Fatalf("Expected ErrTampered, got %v", err)
	}
}

func TestInvalidKeySize(t *testing.T) {
	short := []byte("shortkey")

	if _, err := Seal("test", short); !errors.Is(err, ErrKeySize) {
		t.Fatalf("Seal: expected ErrKeySize, got %v", err)
	}
	if _, err := Open("0123456789abcdef", short); !errors.Is(err, ErrKeySize) {
		t.Fatalf("Open: expected ErrKeySize, got %v", err)
	}
}

func TestOpenMalformed(t *testing.T) {
	if _, err := Open("not-hex", testKey); err == nil {
		t.Fatal("Open should fail with malformed hex")
	}
	// shorter than the 12 byte GCM nonce
	if _, err := Open("abcdef", testKey); err == nil {
		t.Fatal("Open should fail with too short input")
	}
}

func TestParseKey(t *testing.T) {
	if k, err := ParseKey(string(testKey)); err != nil || len(k) != KeySize {
		t.Fatalf("raw key: %v %d", err, len(k))
	}
	hexKey := strings.Repeat("ab", KeySize)
	if k, err := ParseKey(hexKey); err != nil || len(k) != KeySize {
		t.Fatalf("hex key: %v %d", err, len(k))
	}
	if _, err := ParseKey("nope"); !errors.Is(err, ErrKeySize) {
		t.Fatalf("Expected ErrKeySize, got %v", err)
	}
}

func TestGenerateSelfSignedCert(t *testing.T) {
	cert, err := GenerateSelfSignedCert()
	if err != nil {
		t.Fatalf("Failed to generate self-signed cert: %v", err)
	}
	if len(cert.Certificate) == 0 {
		t.Fatal("Generated certificate is empty")
	}
	if cert.PrivateKey == nil {
		t.Fatal("Generated private key is nil")
	}
}
