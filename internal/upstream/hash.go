package upstream

import (
	"crypto/sha256"
	"encoding/hex"
)

// payloadHash computes the hex-encoded SHA-256 digest SigV4 signing
// requires for the request payload.
func payloadHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
