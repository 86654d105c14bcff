package identity

import (
	"bytes"
	"testing"
)

func TestTokenMinterDeterministicSource(t *testing.T) {
	source := bytes.NewReader([]byte{
		0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	})
	minter := NewTokenMinter(source)

	token, err := minter.Mint()
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if token != "000102030405060708090a0b0c0d0e0f" {
		t.Errorf("token = %q, want hex of the source bytes", token)
	}

	// Source exhausted: minting must fail, not truncate.
	if _, err := minter.Mint(); err == nil {
		t.Error("expected error from exhausted random source")
	}
}

func TestTokenMinterDefaultSource(t *testing.T) {
	minter := NewTokenMinter(nil)

	a, err := minter.Mint()
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	b, err := minter.Mint()
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if len(a) != 32 || len(b) != 32 {
		t.Errorf("token lengths = %d, %d; want 32", len(a), len(b))
	}
	if a == b {
		t.Error("two mints from crypto/rand produced the same token")
	}
}
