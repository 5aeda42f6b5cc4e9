package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "pw123" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !VerifyPassword(hash, "pw123") {
		t.Error("expected original password to verify")
	}
	if VerifyPassword(hash, "pw124") {
		t.Error("expected wrong password to fail")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	// A malformed stored hash must verify false, never panic or error
	if VerifyPassword("not-a-bcrypt-hash", "pw123") {
		t.Error("malformed hash should not verify")
	}
	if VerifyPassword("", "pw123") {
		t.Error("empty hash should not verify")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (salt)")
	}
}
