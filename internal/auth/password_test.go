package auth

import (
	"encoding/base64"
	"testing"

	"pgregory.net/rapid"
)

// TestProperty_Password_RoundTrip tests hash/verify consistency
// *For any* password, a freshly derived secret SHALL verify against that
// same password.
func TestProperty_Password_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		password := rapid.StringMatching(`[ -~]{8,64}`).Draw(rt, "password")

		secret, err := HashPassword(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		if !VerifyPassword(password, secret) {
			t.Fatal("PROPERTY VIOLATION: password should verify against its own secret")
		}
	})
}

// TestProperty_Password_WrongPasswordFails tests rejection of mismatches
// *For any* two distinct passwords, the secret of one SHALL NOT verify the
// other.
func TestProperty_Password_WrongPasswordFails(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		password := rapid.StringMatching(`[ -~]{8,64}`).Draw(rt, "password")
		other := rapid.StringMatching(`[ -~]{8,64}`).Draw(rt, "other")
		if password == other {
			return
		}

		secret, err := HashPassword(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		if VerifyPassword(other, secret) {
			t.Fatal("PROPERTY VIOLATION: different password should not verify")
		}
	})
}

// TestProperty_Password_UniqueSalts tests that salting is per-secret
// *For any* password, two derivations SHALL produce different secrets, and
// both SHALL still verify.
func TestProperty_Password_UniqueSalts(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		password := rapid.StringMatching(`[ -~]{8,64}`).Draw(rt, "password")

		first, err := HashPassword(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		second, err := HashPassword(password)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}

		if first == second {
			t.Fatal("PROPERTY VIOLATION: two derivations should produce different secrets")
		}
		if !VerifyPassword(password, first) || !VerifyPassword(password, second) {
			t.Fatal("PROPERTY VIOLATION: both secrets should verify the password")
		}
	})
}

func TestHashPassword_StoredFormat(t *testing.T) {
	secret, err := HashPassword("Secret#1")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		t.Fatalf("secret should be valid base64: %v", err)
	}
	if len(raw) != saltLength+keyLength {
		t.Fatalf("expected %d raw bytes, got %d", saltLength+keyLength, len(raw))
	}

	if !VerifyPassword("Secret#1", secret) {
		t.Fatal("expected the password to verify")
	}
	if VerifyPassword("secret#1", secret) {
		t.Fatal("verification should be case sensitive")
	}
}

func TestVerifyPassword_MalformedSecret(t *testing.T) {
	if VerifyPassword("whatever", "not base64!!!") {
		t.Fatal("malformed secret should never verify")
	}
	// Valid base64 of the wrong length
	short := base64.StdEncoding.EncodeToString([]byte("too short"))
	if VerifyPassword("whatever", short) {
		t.Fatal("truncated secret should never verify")
	}
}
