package envelope

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

// Key handling errors.
var (
	ErrInvalidKeyEncoding = errors.New("envelope: key is not valid hex")
	ErrSaltRequired       = errors.New("envelope: passphrase derivation requires a salt")
)

// SaltSize is the salt length for passphrase derivation.
const SaltSize = 16

// Argon2id parameters for passphrase derivation.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
)

// ParseKey decodes a hex-encoded 32-byte key (64 hex characters).
func ParseKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidKeyEncoding
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return key, nil
}

// GenerateKey returns a fresh random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("envelope: generate key: %w", err)
	}
	return key, nil
}

// GenerateSalt returns a fresh random salt for passphrase derivation.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("envelope: generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKeyFromPassphrase derives a 32-byte key with Argon2id. The salt
// must be supplied by the caller and persisted alongside the database,
// otherwise the key cannot be reproduced for decryption.
func DeriveKeyFromPassphrase(passphrase, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, ErrSaltRequired
	}
	return argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, KeySize), nil
}

// DeriveSubkey derives a purpose-bound subkey from a master key using
// HKDF-SHA256. Subkeys give WAL and snapshot separate keys at the cost
// of compatibility with files written under the master key directly.
func DeriveSubkey(masterKey []byte, info string) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidKeySize
	}
	reader := hkdf.New(sha256.New, masterKey, nil, []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("envelope: derive subkey: %w", err)
	}
	return key, nil
}

// ZeroKey wipes key material in place.
func ZeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}
