package jsondb

import (
	"errors"
	"fmt"

	"github.com/sethunthunder111/json-database-st/internal/storage/snapshot"
	"github.com/sethunthunder111/json-database-st/pkg/crypto/envelope"
)

// Kind classifies a database error.
type Kind uint8

const (
	// KindConfig covers bad key material and invalid options.
	KindConfig Kind = iota
	// KindIO covers snapshot and WAL file failures.
	KindIO
	// KindParse covers malformed snapshots and envelopes.
	KindParse
	// KindCrypto covers AEAD integrity and decryption failures.
	KindCrypto
	// KindInput covers invalid caller-supplied data, such as batch JSON.
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindIO:
		return "io"
	case KindParse:
		return "parse"
	case KindCrypto:
		return "crypto"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// Error wraps a failure with its kind and the operation that hit it.
type Error struct {
	kind Kind
	op   string
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsondb: %s: %v", e.op, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// ErrClosed is returned for operations on a closed database.
var ErrClosed = errors.New("jsondb: database is closed")

func wrapErr(kind Kind, op string, err error) error {
	return &Error{kind: kind, op: op, err: err}
}

// classify maps lower-layer failures onto error kinds.
func classify(err error) Kind {
	switch {
	case errors.Is(err, envelope.ErrDecryptFailed):
		return KindCrypto
	case errors.Is(err, envelope.ErrMalformedEnvelope),
		errors.Is(err, snapshot.ErrMalformedSnapshot):
		return KindParse
	default:
		return KindIO
	}
}

func hasKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.kind == kind
}

// IsConfigError reports a configuration failure: bad hex key, wrong key
// length, invalid options.
func IsConfigError(err error) bool {
	return hasKind(err, KindConfig)
}

// IsIOError reports a file read/write/rename/open failure.
func IsIOError(err error) bool {
	return hasKind(err, KindIO)
}

// IsParseError reports a malformed snapshot or envelope.
func IsParseError(err error) bool {
	return hasKind(err, KindParse)
}

// IsCryptoError reports an AEAD integrity or decryption failure.
func IsCryptoError(err error) bool {
	return hasKind(err, KindCrypto)
}

// IsInputError reports invalid caller-supplied data.
func IsInputError(err error) bool {
	return hasKind(err, KindInput)
}
