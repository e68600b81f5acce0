package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken draws n bytes of entropy and returns them hex encoded, so the
// result is 2*n characters. Used for idempotency keys on outbound Stripe
// calls.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
