// Package credential persists the palette service API key on local disk.
//
// The stored form is obfuscated, not encrypted: every byte is XORed with a
// single byte derived from a fixed salt, hex-encoded and then base64-encoded.
// It keeps the key from sitting in plain text but anyone with read access to
// the file can recover it. Do not treat it as a secret store.
package credential

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound means no usable credential is stored.
var ErrNotFound = errors.New("no stored credential")

const salt = "color-palette-secret"

// saltKey folds the salt into the single byte used for XOR.
func saltKey() byte {
	var k byte
	for i := 0; i < len(salt); i++ {
		k ^= salt[i]
	}
	return k
}

// Obfuscate encodes a secret into its stored form.
func Obfuscate(secret string) string {
	k := saltKey()
	b := []byte(secret)
	for i := range b {
		b[i] ^= k
	}
	return base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(b)))
}

// Reveal reverses Obfuscate.
func Reveal(stored string) (string, error) {
	hexText, err := base64.StdEncoding.DecodeString(strings.TrimSpace(stored))
	if err != nil {
		return "", fmt.Errorf("stored credential is not base64: %w", err)
	}
	b, err := hex.DecodeString(string(hexText))
	if err != nil {
		return "", fmt.Errorf("stored credential is not hex: %w", err)
	}
	k := saltKey()
	for i := range b {
		b[i] ^= k
	}
	return string(b), nil
}

// Store keeps one obfuscated credential in a file.
//
// An environment variable, when set, overrides the file for Load and is never
// written back.
type Store struct {
	mu     sync.Mutex
	path   string
	envVar string
	logger *slog.Logger
}

// NewStore returns a store backed by path. envVar may be empty.
func NewStore(path, envVar string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, envVar: envVar, logger: logger}
}

// DefaultPath is the credential file under the user's config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "palette-tools-mcp", "credential")
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Save writes the secret, replacing any previous one.
func (s *Store) Save(secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return fmt.Errorf("credential is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(Obfuscate(secret)), 0o600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write credential: %w", err)
	}
	return nil
}

// Load returns the secret, preferring the environment override.
//
// A missing or unreadable file yields ErrNotFound; a corrupt one is logged
// and also reported as ErrNotFound so the user is simply asked again.
func (s *Store) Load() (string, error) {
	if s.envVar != "" {
		if v := strings.TrimSpace(os.Getenv(s.envVar)); v != "" {
			return v, nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential: %w", err)
	}

	secret, err := Reveal(string(data))
	if err != nil || secret == "" {
		s.logger.Warn("ignoring unreadable credential file", "path", s.path, "error", err)
		return "", ErrNotFound
	}
	return secret, nil
}

// FromEnv reports whether Load is currently served by the environment.
func (s *Store) FromEnv() bool {
	return s.envVar != "" && strings.TrimSpace(os.Getenv(s.envVar)) != ""
}

// Clear removes the stored credential. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}
