package jsondb

import (
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/sethunthunder111/json-database-st/internal/config"
	"github.com/sethunthunder111/json-database-st/internal/storage/wal"
	"github.com/sethunthunder111/json-database-st/internal/telemetry/logger"
	"github.com/sethunthunder111/json-database-st/pkg/crypto/envelope"
)

// FlushMode selects when buffered WAL bytes reach the file.
type FlushMode string

const (
	// FlushLazy buffers appends until save, close, or an explicit
	// flush. This is the default and matches the on-disk durability
	// contract of existing databases.
	FlushLazy FlushMode = "lazy"

	// FlushAlways flushes after every append.
	FlushAlways FlushMode = "always"

	// FlushInterval flushes on a background ticker.
	FlushInterval FlushMode = "interval"
)

// Security configures encryption at rest. Either a raw hex key or a
// passphrase with a salt; leaving everything empty disables encryption.
type Security struct {
	// EncryptionKey is the 32-byte AES key, hex-encoded (64 chars).
	EncryptionKey string

	// Passphrase derives the key with Argon2id when set.
	Passphrase string

	// Salt is the hex-encoded derivation salt. Required with a
	// passphrase; the same salt must be supplied on every open.
	Salt string
}

// WALConfig configures the write-ahead log.
type WALConfig struct {
	Enabled       bool
	FlushMode     FlushMode
	FlushInterval time.Duration
}

// Config configures a database instance.
type Config struct {
	// Path is the snapshot file. The WAL lives at the same path with
	// the extension replaced by .wal.
	Path string

	Security Security

	// PrettyPrint indents plaintext snapshots.
	PrettyPrint bool

	WAL WALConfig

	// Logger receives structured recovery and persistence logs. Nil
	// selects the package default (JSON to stderr, key material
	// redacted).
	Logger *slog.Logger

	// Metrics enables the Prometheus collector, served by
	// (*DB).MetricsHandler.
	Metrics bool
}

// DefaultConfig returns the default configuration for a database file:
// WAL on with lazy flushing, pretty-printed snapshots, no encryption.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		PrettyPrint: true,
		WAL: WALConfig{
			Enabled:       true,
			FlushMode:     FlushLazy,
			FlushInterval: wal.DefaultFlushInterval,
		},
	}
}

// LoadConfig reads a YAML configuration file, applies JSONDB_
// environment overrides, and maps the result onto a Config.
func LoadConfig(path string) (Config, error) {
	spec, err := config.Load(path)
	if err != nil {
		return Config{}, wrapErr(KindConfig, "load config", err)
	}
	return configFromSpec(spec), nil
}

func configFromSpec(spec *config.Spec) Config {
	return Config{
		Path: spec.Path,
		Security: Security{
			EncryptionKey: spec.Security.EncryptionKey,
			Passphrase:    spec.Security.Passphrase,
			Salt:          spec.Security.Salt,
		},
		PrettyPrint: spec.PrettyPrint,
		WAL: WALConfig{
			Enabled:       spec.WAL.Enabled,
			FlushMode:     FlushMode(spec.WAL.FlushMode),
			FlushInterval: spec.WAL.FlushInterval,
		},
		Logger: logger.New(logger.Config{
			Level:  spec.Log.Level,
			Format: spec.Log.Format,
		}),
	}
}

// buildCipher resolves key material into a cipher, or nil when
// encryption is off.
func buildCipher(sec Security) (*envelope.Cipher, error) {
	if sec.EncryptionKey != "" && sec.Passphrase != "" {
		return nil, errors.New("encryption key and passphrase are mutually exclusive")
	}

	var key []byte
	switch {
	case sec.EncryptionKey != "":
		k, err := envelope.ParseKey(sec.EncryptionKey)
		if err != nil {
			return nil, err
		}
		key = k
	case sec.Passphrase != "":
		salt, err := hex.DecodeString(sec.Salt)
		if err != nil {
			return nil, errors.New("salt is not valid hex")
		}
		k, derr := envelope.DeriveKeyFromPassphrase([]byte(sec.Passphrase), salt)
		if derr != nil {
			return nil, derr
		}
		key = k
	default:
		return nil, nil
	}

	return envelope.NewCipher(key)
}

func walFlushMode(m FlushMode) wal.FlushMode {
	switch m {
	case FlushAlways:
		return wal.FlushAlways
	case FlushInterval:
		return wal.FlushInterval
	default:
		return wal.FlushLazy
	}
}
