package web

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Gate checks the shared access password.
type Gate struct {
	hash []byte
}

// NewGate builds a gate from a bcrypt hash, or hashes password once when no
// hash is given.
func NewGate(password, hash string) (*Gate, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid ACCESS_PASSWORD_HASH: %w", err)
		}
		return &Gate{hash: []byte(hash)}, nil
	}

	if password == "" {
		return nil, fmt.Errorf("access password is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &Gate{hash: hashed}, nil
}

// Check reports whether password matches.
func (g *Gate) Check(password string) bool {
	return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
}
