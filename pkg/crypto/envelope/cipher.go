package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// NonceSize is the GCM nonce length in bytes (96 bits).
	NonceSize = 12

	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// ErrInvalidKeySize is returned for keys that are not 32 bytes.
var ErrInvalidKeySize = errors.New("envelope: key must be 32 bytes")

// Cipher seals and opens envelopes with AES-256-GCM.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher creates a cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("envelope: new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("envelope: new gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random nonce and splits the
// authentication tag out of the sealed output.
func (c *Cipher) Seal(plaintext []byte) (*Envelope, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("envelope: nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - TagSize

	return &Envelope{
		IV:      hex.EncodeToString(nonce),
		Content: hex.EncodeToString(sealed[:split]),
		Tag:     hex.EncodeToString(sealed[split:]),
	}, nil
}

// Open authenticates and decrypts an envelope. Tampered or mismatched
// ciphertexts yield ErrDecryptFailed.
func (c *Cipher) Open(e *Envelope) ([]byte, error) {
	iv, content, tag, err := e.decode()
	if err != nil {
		return nil, err
	}
	if len(iv) != NonceSize || len(tag) != TagSize {
		return nil, ErrMalformedEnvelope
	}

	sealed := make([]byte, 0, len(content)+len(tag))
	sealed = append(sealed, content...)
	sealed = append(sealed, tag...)

	plain, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}

// SealJSON seals plaintext and returns the envelope's JSON encoding.
func (c *Cipher) SealJSON(plaintext []byte) ([]byte, error) {
	e, err := c.Seal(plaintext)
	if err != nil {
		return nil, err
	}
	return e.Marshal()
}

// OpenJSON parses an envelope from JSON and opens it.
func (c *Cipher) OpenJSON(data []byte) ([]byte, error) {
	e, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return c.Open(e)
}
