package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var _ PasswordHasher = (*BcryptHasher)(nil)

// PasswordHasher produces and verifies salted one-way credential hashes.
type PasswordHasher interface {
	// Hash returns a salted hash of plaintext. Two calls on the same input
	// yield different hashes.
	Hash(plaintext string) (string, error)

	// Verify reports whether plaintext matches hash. Any verification
	// failure (mismatch, corrupt hash, algorithm mismatch) is "no match".
	Verify(plaintext, hash string) bool
}

// BcryptHasher hashes credentials with bcrypt. bcrypt generates a random
// salt per call and embeds it in the output, and its cost factor keeps
// brute-force attempts expensive.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost factor. Costs outside
// bcrypt's supported range fall back to the library default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
