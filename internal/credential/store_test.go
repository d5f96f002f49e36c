package credential

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestObfuscate_RoundTrip(t *testing.T) {
	for _, secret := range []string{"AIzaSyExampleKey-123_456", "x", "키-with-unicode"} {
		stored := Obfuscate(secret)
		if strings.Contains(stored, secret) {
			t.Errorf("stored form contains the secret in plain text: %q", stored)
		}
		got, err := Reveal(stored)
		if err != nil {
			t.Fatalf("Reveal(%q): %v", stored, err)
		}
		if got != secret {
			t.Errorf("round trip: got %q, want %q", got, secret)
		}
	}
}

func TestObfuscate_KnownValue(t *testing.T) {
	// XOR of the salt bytes is 0x16, so "A" (0x41) becomes 0x57 -> "57" -> base64.
	if got := Obfuscate("A"); got != "NTc=" {
		t.Errorf("Obfuscate(A): got %q, want NTc=", got)
	}
}

func TestReveal_Corrupt(t *testing.T) {
	for _, in := range []string{"!!!", "bm90IGhleA=="} {
		if _, err := Reveal(in); err == nil {
			t.Errorf("Reveal(%q) should fail", in)
		}
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "nested", "credential"), "", nil)
}

func TestStore_SaveLoadClear(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty store: got %v, want ErrNotFound", err)
	}

	if err := s.Save("  secret-key \n"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if strings.Contains(string(raw), "secret-key") {
		t.Error("file contains the plain-text secret")
	}
	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions: got %v, want 0600", info.Mode().Perm())
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got != "secret-key" {
		t.Errorf("Load: got %q, want secret-key", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load after Clear: got %v, want ErrNotFound", err)
	}
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestStore_SaveEmpty(t *testing.T) {
	if err := newTestStore(t).Save("   "); err == nil {
		t.Error("Save of an empty secret should fail")
	}
}

func TestStore_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("%%% not base64"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestStore_EnvOverride(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "credential"), "PALETTE_TEST_KEY", nil)
	if err := s.Save("from-file"); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PALETTE_TEST_KEY", "from-env")
	if !s.FromEnv() {
		t.Error("FromEnv should be true")
	}
	got, err := s.Load()
	if err != nil || got != "from-env" {
		t.Errorf("Load: got %q, %v; want from-env", got, err)
	}

	t.Setenv("PALETTE_TEST_KEY", "")
	got, err = s.Load()
	if err != nil || got != "from-file" {
		t.Errorf("Load without env: got %q, %v; want from-file", got, err)
	}
}
