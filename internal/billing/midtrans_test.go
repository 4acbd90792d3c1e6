package billing

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"
)

func signatureFor(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func TestVerifySignature(t *testing.T) {
	const (
		orderID   = "ORDER-7f1c"
		status    = "200"
		gross     = "49000.00"
		serverKey = "SB-Mid-server-testkey"
	)
	valid := signatureFor(orderID, status, gross, serverKey)

	if !VerifySignature(orderID, status, gross, serverKey, valid) {
		t.Error("valid signature rejected")
	}
	if VerifySignature(orderID, status, gross, serverKey, valid[:len(valid)-2]+"00") {
		t.Error("tampered signature accepted")
	}
	if VerifySignature("ORDER-other", status, gross, serverKey, valid) {
		t.Error("signature accepted for different order")
	}
	if VerifySignature(orderID, status, gross, "wrong-key", valid) {
		t.Error("signature accepted with wrong server key")
	}
	if VerifySignature(orderID, status, gross, serverKey, "") {
		t.Error("empty signature accepted")
	}
}

// A notification signed against an empty server key must never verify, even
// when the digest itself is correct for that empty key.
func TestVerifySignatureEmptyServerKey(t *testing.T) {
	const (
		orderID = "ORDER-7f1c"
		status  = "200"
		gross   = "49000.00"
	)
	forged := signatureFor(orderID, status, gross, "")
	if VerifySignature(orderID, status, gross, "", forged) {
		t.Error("signature accepted with unconfigured server key")
	}
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		transaction string
		fraud       string
		want        string
	}{
		{"capture", "accept", PaymentSuccess},
		{"capture", "", PaymentSuccess},
		{"capture", "challenge", PaymentPending},
		{"settlement", "", PaymentSuccess},
		{"cancel", "", PaymentFailed},
		{"deny", "", PaymentFailed},
		{"expire", "", PaymentFailed},
		{"failure", "", PaymentFailed},
		{"pending", "", PaymentPending},
		{"authorize", "", PaymentPending},
	}
	for _, tt := range tests {
		if got := MapStatus(tt.transaction, tt.fraud); got != tt.want {
			t.Errorf("MapStatus(%q, %q) = %q, want %q", tt.transaction, tt.fraud, got, tt.want)
		}
	}
}
