// Package auth guards destructive operations behind an operator PIN
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPIN = errors.New("invalid PIN")
	ErrEmptyPIN   = errors.New("PIN cannot be empty")
)

// Guard checks PINs against a bcrypt hash. An empty hash disables the check.
type Guard struct {
	mu   sync.RWMutex
	hash string
}

// NewGuard creates a guard for the stored hash
func NewGuard(hash string) *Guard {
	return &Guard{hash: strings.TrimSpace(hash)}
}

// Enabled reports whether a PIN is required
func (g *Guard) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hash != ""
}

// SetHash replaces the stored hash, e.g. after the config was saved
func (g *Guard) SetHash(hash string) {
	g.mu.Lock()
	g.hash = strings.TrimSpace(hash)
	g.mu.Unlock()
}

// Check returns nil when no PIN is configured or pin matches
func (g *Guard) Check(pin string) error {
	g.mu.RLock()
	hash := g.hash
	g.mu.RUnlock()

	if hash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return ErrInvalidPIN
	}
	return nil
}

// HashPIN produces the hash stored in security.delete_pin_hash
func HashPIN(pin string) (string, error) {
	if strings.TrimSpace(pin) == "" {
		return "", ErrEmptyPIN
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hashed), nil
}
