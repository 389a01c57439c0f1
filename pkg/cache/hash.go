package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash returns the hex SHA-256 of data. Plan files are hashed raw, so any
// byte change, a comment included, yields a new hash and a fresh solve.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a namespaced cache key. Parts are joined with a NUL byte
// before hashing so distinct part lists cannot collide.
func hashKey(namespace string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return fmt.Sprintf("%s:%s", namespace, hex.EncodeToString(sum[:]))
}
