package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	s := Default()
	if !s.WAL.Enabled {
		t.Errorf("WAL disabled by default")
	}
	if s.WAL.FlushMode != "lazy" {
		t.Errorf("FlushMode = %q, want lazy", s.WAL.FlushMode)
	}
	if !s.PrettyPrint {
		t.Errorf("PrettyPrint off by default")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "db.yaml", `
path: /var/data/db.json
pretty_print: false
security:
  encryption_key: "`+strings.Repeat("ab", 32)+`"
wal:
  enabled: true
  flush_mode: interval
  flush_interval: 250ms
log:
  level: debug
`)

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Path != "/var/data/db.json" {
		t.Errorf("Path = %q", s.Path)
	}
	if s.PrettyPrint {
		t.Errorf("PrettyPrint = true, want false")
	}
	if s.WAL.FlushMode != "interval" || s.WAL.FlushInterval != 250*time.Millisecond {
		t.Errorf("WAL = %+v", s.WAL)
	}
	if s.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", s.Log.Level)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "db.yaml", "path: /var/data/db.json\nwal:\n  flush_mode: lazy\n")
	t.Setenv("JSONDB_WAL_FLUSH_MODE", "always")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.WAL.FlushMode != "always" {
		t.Errorf("FlushMode = %q, want always (env override)", s.WAL.FlushMode)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("Load(absent) expected error")
	}
}

func TestVerify(t *testing.T) {
	validKey := strings.Repeat("ab", 32)

	tests := []struct {
		name    string
		mutate  func(*Spec)
		wantErr error
	}{
		{
			name:    "missing path",
			mutate:  func(s *Spec) { s.Path = "" },
			wantErr: ErrPathRequired,
		},
		{
			name:   "valid key",
			mutate: func(s *Spec) { s.Security.EncryptionKey = validKey },
		},
		{
			name:    "key and passphrase",
			mutate:  func(s *Spec) { s.Security.EncryptionKey = validKey; s.Security.Passphrase = "p" },
			wantErr: ErrKeyOrPass,
		},
		{
			name:    "passphrase without salt",
			mutate:  func(s *Spec) { s.Security.Passphrase = "p" },
			wantErr: ErrSaltRequired,
		},
		{
			name:   "passphrase with salt",
			mutate: func(s *Spec) { s.Security.Passphrase = "p"; s.Security.Salt = "00112233445566778899aabbccddeeff" },
		},
		{
			name:    "bad salt hex",
			mutate:  func(s *Spec) { s.Security.Passphrase = "p"; s.Security.Salt = "zz" },
			wantErr: ErrBadSalt,
		},
		{
			name:    "bad flush mode",
			mutate:  func(s *Spec) { s.WAL.FlushMode = "sometimes" },
			wantErr: ErrBadFlushMode,
		},
		{
			name:    "interval without period",
			mutate:  func(s *Spec) { s.WAL.FlushMode = "interval"; s.WAL.FlushInterval = 0 },
			wantErr: ErrBadInterval,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			s.Path = "/tmp/db.json"
			tt.mutate(s)
			err := Verify(s)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Verify() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyBadKey(t *testing.T) {
	s := Default()
	s.Path = "/tmp/db.json"
	s.Security.EncryptionKey = "deadbeef"
	if err := Verify(s); err == nil {
		t.Errorf("Verify() expected error for short key")
	}
}

func TestWatcherReload(t *testing.T) {
	path := writeFile(t, "db.yaml", "path: /tmp/db.json\nwal:\n  flush_mode: lazy\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	reloaded := make(chan *Spec, 1)
	w.OnReload(func(s *Spec) {
		select {
		case reloaded <- s:
		default:
		}
	})
	w.Start()

	if err := os.WriteFile(path, []byte("path: /tmp/db.json\nwal:\n  flush_mode: always\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case s := <-reloaded:
		if s.WAL.FlushMode != "always" {
			t.Errorf("reloaded FlushMode = %q, want always", s.WAL.FlushMode)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("reload callback never fired")
	}
}

func TestWatcherRejectsInvalidReload(t *testing.T) {
	path := writeFile(t, "db.yaml", "path: /tmp/db.json\n")

	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	fired := make(chan struct{}, 1)
	w.OnReload(func(*Spec) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	w.Start()

	// Invalid config (flush mode) must not reach callbacks.
	if err := os.WriteFile(path, []byte("path: /tmp/db.json\nwal:\n  flush_mode: sometimes\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case <-fired:
		t.Errorf("invalid config reached OnReload")
	case <-time.After(500 * time.Millisecond):
	}
}
