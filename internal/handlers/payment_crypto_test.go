package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
)

func TestEncryptDecryptSecretRoundTrip(t *testing.T) {
	const passphrase = "test-jwt-secret"
	const plaintext = "rzp_sk_live_abc123def456"

	stored, err := encryptSecret(plaintext, passphrase)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if !strings.Contains(stored, ":") {
		t.Fatalf("expected iv:ciphertext format, got %q", stored)
	}
	if strings.Contains(stored, plaintext) {
		t.Fatal("stored form must not contain the plaintext")
	}

	if got := decryptSecret(stored, passphrase); got != plaintext {
		t.Fatalf("round trip mismatch: got %q", got)
	}
}

func TestEncryptSecretRandomizesIV(t *testing.T) {
	a, err := encryptSecret("secret", "pass")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	b, err := encryptSecret("secret", "pass")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if a == b {
		t.Fatal("two encryptions of the same secret must differ")
	}
}

func TestDecryptSecretFailuresReturnEmpty(t *testing.T) {
	stored, err := encryptSecret("secret", "pass")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	cases := map[string]string{
		"no separator":     "deadbeef",
		"bad iv hex":       "zz:" + strings.SplitN(stored, ":", 2)[1],
		"short iv":         "dead:" + strings.SplitN(stored, ":", 2)[1],
		"bad cipher hex":   strings.SplitN(stored, ":", 2)[0] + ":zz",
		"empty ciphertext": strings.SplitN(stored, ":", 2)[0] + ":",
		"empty string":     "",
	}
	for name, input := range cases {
		if got := decryptSecret(input, "pass"); got != "" {
			t.Fatalf("%s: expected empty result, got %q", name, got)
		}
	}

	if got := decryptSecret(stored, "wrong-pass"); got != "" {
		t.Fatalf("wrong passphrase: expected empty result, got %q", got)
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	const secret = "gateway-secret"
	const orderID = "order_MkzTest123"
	const paymentID = "pay_MkzTest456"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	sig := hex.EncodeToString(mac.Sum(nil))

	if !verifyPaymentSignature(orderID, paymentID, sig, secret) {
		t.Fatal("expected valid signature to verify")
	}
}

func TestVerifyPaymentSignatureRejectsTampering(t *testing.T) {
	const secret = "gateway-secret"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("order_1|pay_1"))
	sig := hex.EncodeToString(mac.Sum(nil))

	mutated := []byte(sig)
	if mutated[0] == 'a' {
		mutated[0] = 'b'
	} else {
		mutated[0] = 'a'
	}
	if verifyPaymentSignature("order_1", "pay_1", string(mutated), secret) {
		t.Fatal("expected single character mutation to fail verification")
	}

	if verifyPaymentSignature("order_1", "pay_2", sig, secret) {
		t.Fatal("expected signature for different payment to fail")
	}
	if verifyPaymentSignature("order_1", "pay_1", sig, "other-secret") {
		t.Fatal("expected signature under different secret to fail")
	}
	if verifyPaymentSignature("order_1", "pay_1", "", secret) {
		t.Fatal("expected empty signature to fail")
	}
}
