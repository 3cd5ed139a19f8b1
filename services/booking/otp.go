package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// StartOTPDigits and StartOTPTTL are the single service-start code policy:
// a 4-digit numeric code valid for 5 minutes.
const (
	StartOTPDigits = 4
	StartOTPTTL    = 5 * time.Minute
)

// generateStartOTP returns a zero-padded numeric code of StartOTPDigits digits.
func generateStartOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < StartOTPDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("failed to generate start code: %w", err)
	}
	return fmt.Sprintf("%0*d", StartOTPDigits, n), nil
}
