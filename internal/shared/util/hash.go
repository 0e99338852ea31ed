package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey maps an owner ID (JWT subject or guest key) to a stable
// filesystem-safe directory name.
func HashUserKey(ownerID string) string {
	digest := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(digest[:])
}
