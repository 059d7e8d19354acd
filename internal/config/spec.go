package config

import "time"

// Spec is the file/env configuration for one database.
type Spec struct {
	// Path is the snapshot file; the WAL lives next to it.
	Path string `koanf:"path"`

	// PrettyPrint indents plaintext snapshots.
	PrettyPrint bool `koanf:"pretty_print"`

	Security SecuritySection `koanf:"security"`
	WAL      WALSection      `koanf:"wal"`
	Log      LogSection      `koanf:"log"`
}

// SecuritySection configures encryption at rest. Either a raw hex key
// or a passphrase with a salt; leaving both empty disables encryption.
type SecuritySection struct {
	// EncryptionKey is the 32-byte key, hex-encoded (64 characters).
	EncryptionKey string `koanf:"encryption_key"`

	// Passphrase derives the key via Argon2id when set.
	Passphrase string `koanf:"passphrase"`

	// Salt is the hex-encoded derivation salt. Required with a
	// passphrase: the same salt must be supplied on every open.
	Salt string `koanf:"salt"`
}

// WALSection configures the write-ahead log.
type WALSection struct {
	Enabled bool `koanf:"enabled"`

	// FlushMode is lazy, always, or interval.
	FlushMode string `koanf:"flush_mode"`

	// FlushInterval is the ticker period for interval mode.
	FlushInterval time.Duration `koanf:"flush_interval"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
