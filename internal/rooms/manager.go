// Package rooms provides room code management for the hosted relay and a
// client for its HTTP room API.
package rooms

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Manager issues room codes and answers existence lookups. Codes are
// uppercase alphanumeric; lookups canonicalize their input.
type Manager struct {
	mu    sync.RWMutex
	codes map[string]struct{}
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{codes: make(map[string]struct{})}
}

// Create generates a fresh room code and registers it.
func (m *Manager) Create() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, taken := m.codes[code]; taken {
			continue
		}
		m.codes[code] = struct{}{}
		return code, nil
	}
}

// Exists reports whether a room with the given code was created.
func (m *Manager) Exists(code string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.codes[strings.ToUpper(code)]
	return ok
}

// Count returns the number of rooms created.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.codes)
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate room code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
