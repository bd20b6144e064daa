package auth

import (
	"sync"

	"github.com/alexedwards/argon2id"
)

var params = &argon2id.Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

var (
	decoyOnce sync.Once
	decoyHash string
)

// Hash encodes password as an Argon2id hash for the users table.
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// Verify compares password with a stored hash.
func Verify(password, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}

// VerifyDecoy spends the same work as Verify for a login that matched no
// account, so response times do not reveal which emails are registered.
func VerifyDecoy(password string) {
	decoyOnce.Do(func() {
		decoyHash, _ = argon2id.CreateHash("railmadad-decoy", params)
	})
	if decoyHash != "" {
		_, _ = argon2id.ComparePasswordAndHash(password, decoyHash)
	}
}

// NeedsRehash reports whether encodedHash was made with weaker parameters
// than the current ones.
func NeedsRehash(encodedHash string) bool {
	p, _, _, err := argon2id.DecodeHash(encodedHash)
	if err != nil {
		return true
	}
	return p.Memory < params.Memory || p.Iterations < params.Iterations || p.KeyLength < params.KeyLength
}
