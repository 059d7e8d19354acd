package wal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sethunthunder111/json-database-st/pkg/crypto/envelope"
)

// Replay streams the log at path and hands every decodable operation to
// apply, in file order. Lines that fail envelope parsing, decryption,
// or operation decoding are skipped: the WAL is best-effort recovery
// and a torn or corrupt record must not abort it. A missing file is an
// empty log.
//
// Returns the number of applied and skipped lines.
func Replay(path string, cipher *envelope.Cipher, apply func(Operation)) (applied, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("wal: open for replay: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimSuffix(line, []byte("\n"))
			if len(bytes.TrimSpace(line)) > 0 {
				op, decErr := decodeLine(line, cipher)
				if decErr != nil {
					skipped++
				} else {
					apply(op)
					applied++
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return applied, skipped, nil
			}
			return applied, skipped, fmt.Errorf("wal: read: %w", err)
		}
	}
}

func decodeLine(line []byte, cipher *envelope.Cipher) (Operation, error) {
	if cipher != nil {
		plain, err := cipher.OpenJSON(line)
		if err != nil {
			return Operation{}, err
		}
		line = plain
	}
	return Decode(line)
}
