// Package checksum derives version tags for optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Of returns the hex-encoded SHA-256 digest of v's JSON encoding.
// Values that cannot be encoded yield an empty string.
func Of(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
