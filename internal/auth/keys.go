package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// RevokedKey is the Redis key marking a token id as signed out.
func RevokedKey(jti string) string {
	return fmt.Sprintf("revoked:%s:%s", Audience, jti)
}

// LoginAttemptsKey is the Redis counter of failed logins for an account.
// The login name is hashed so addresses never land in Redis.
func LoginAttemptsKey(login string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(login))))
	return fmt.Sprintf("login:attempts:%s", base64.RawURLEncoding.EncodeToString(sum[:]))
}
