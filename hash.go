package wptl

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey builds the cache key for a segment translation. Translations from
// different models are kept apart; an empty model leaves the suffix off.
func CacheKey(hash, targetLang, model string) string {
	key := hash + ":" + strings.ToLower(targetLang)
	if model != "" {
		key += ":" + model
	}
	return key
}

