package xlitfix

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

// CacheKey generates a cache key from a text hash and target language.
func CacheKey(hash, targetLang string) string {
	return hash + ":" + targetLang
}

// CacheKeyExtended generates a cache key that also includes the source language tag.
// Use this when one cache is shared between source languages.
func CacheKeyExtended(hash, sourceLang, targetLang string) string {
	return hash + ":" + sourceLang + ":" + targetLang
}
