package crypto

import (
	"bytes"
	"testing"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("pw1")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if bytes.Equal(hash, []byte("pw1")) {
		t.Fatal("digest must not equal the plaintext")
	}
	if err := ComparePassword(hash, "pw1"); err != nil {
		t.Fatalf("expected matching password to verify: %v", err)
	}
	if err := ComparePassword(hash, "pw2"); err == nil {
		t.Fatal("expected mismatched password to fail verification")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	hash, err := HashPassword("")
	if err != nil {
		t.Fatalf("hash empty password: %v", err)
	}
	if err := ComparePassword(hash, ""); err != nil {
		t.Fatalf("expected empty password to verify against its digest: %v", err)
	}
	if err := ComparePassword(hash, "x"); err == nil {
		t.Fatal("expected non-empty candidate to fail against empty-password digest")
	}
}
