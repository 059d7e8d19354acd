package config

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/sethunthunder111/json-database-st/pkg/crypto/envelope"
)

// Verification errors.
var (
	ErrPathRequired = errors.New("config: path is required")
	ErrKeyOrPass    = errors.New("config: encryption_key and passphrase are mutually exclusive")
	ErrSaltRequired = errors.New("config: passphrase requires a salt")
	ErrBadSalt      = errors.New("config: salt is not valid hex")
	ErrBadFlushMode = errors.New("config: flush_mode must be lazy, always, or interval")
	ErrBadInterval  = errors.New("config: flush_interval must be positive")
)

// Verify validates the configuration.
func Verify(s *Spec) error {
	if s.Path == "" {
		return ErrPathRequired
	}
	if err := verifySecurity(&s.Security); err != nil {
		return err
	}
	return verifyWAL(&s.WAL)
}

func verifySecurity(s *SecuritySection) error {
	if s.EncryptionKey != "" && s.Passphrase != "" {
		return ErrKeyOrPass
	}
	if s.EncryptionKey != "" {
		if _, err := envelope.ParseKey(s.EncryptionKey); err != nil {
			return fmt.Errorf("config: encryption_key: %w", err)
		}
	}
	if s.Passphrase != "" {
		if s.Salt == "" {
			return ErrSaltRequired
		}
		if _, err := hex.DecodeString(s.Salt); err != nil {
			return ErrBadSalt
		}
	}
	return nil
}

func verifyWAL(w *WALSection) error {
	switch w.FlushMode {
	case "", "lazy", "always":
	case "interval":
		if w.FlushInterval <= 0 {
			return ErrBadInterval
		}
	default:
		return ErrBadFlushMode
	}
	return nil
}

// Sanitize fills empty fields with defaults after loading.
func Sanitize(s *Spec) {
	if s.WAL.FlushMode == "" {
		s.WAL.FlushMode = DefaultFlushMode
	}
	if s.WAL.FlushInterval <= 0 {
		s.WAL.FlushInterval = DefaultFlushInterval
	}
	if s.Log.Level == "" {
		s.Log.Level = DefaultLogLevel
	}
	if s.Log.Format == "" {
		s.Log.Format = DefaultLogFormat
	}
}
