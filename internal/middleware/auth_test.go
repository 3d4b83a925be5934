package middleware

import "testing"

func TestSecretGuardPlaintext(t *testing.T) {
	guard := NewSecretGuard("correct horse battery")

	if !guard.Verify("correct horse battery") {
		t.Fatal("expected matching secret to verify")
	}
	if guard.Verify("wrong") {
		t.Fatal("expected mismatched secret to fail")
	}
	if guard.Verify("") {
		t.Fatal("expected empty candidate to fail")
	}
}

func TestSecretGuardFailsClosed(t *testing.T) {
	guard := NewSecretGuard("")
	if guard.Verify("") {
		t.Fatal("empty configured secret must never verify")
	}
	if guard.Verify("anything") {
		t.Fatal("empty configured secret must never verify")
	}
}

func TestSecretGuardBcrypt(t *testing.T) {
	hash, err := HashSecret("correct horse battery")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}

	guard := NewSecretGuard(hash)
	if !guard.Verify("correct horse battery") {
		t.Fatal("expected plaintext to verify against its bcrypt hash")
	}
	if guard.Verify("wrong") {
		t.Fatal("expected mismatched plaintext to fail against hash")
	}
}
