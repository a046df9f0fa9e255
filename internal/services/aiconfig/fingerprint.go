package aiconfig

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
)

// Fingerprint identifies an API key without revealing it.
func Fingerprint(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(apiKey))
	return base58.Encode(hash[:])
}

// FormatFingerprint truncates a fingerprint for display (first 12 characters).
func FormatFingerprint(fingerprint string) string {
	if len(fingerprint) <= 12 {
		return fingerprint
	}
	return fmt.Sprintf("%s...", fingerprint[:12])
}
