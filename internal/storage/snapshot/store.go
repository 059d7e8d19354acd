package snapshot

import (
	"errors"
	"fmt"
	"os"

	"github.com/sethunthunder111/json-database-st/pkg/crypto/envelope"
	"github.com/sethunthunder111/json-database-st/pkg/document"
)

// ErrMalformedSnapshot is returned when the snapshot file is not a
// valid document.
var ErrMalformedSnapshot = errors.New("snapshot: malformed snapshot")

const filePerm = 0600

// Store reads and writes the snapshot file.
type Store struct {
	path   string
	cipher *envelope.Cipher
	pretty bool
}

// New creates a store for the given file. With a cipher, the file holds
// a single envelope; otherwise plain JSON, indented when pretty is set.
func New(path string, cipher *envelope.Cipher, pretty bool) *Store {
	return &Store{path: path, cipher: cipher, pretty: pretty}
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// TempPath returns the intermediate file path used during Write.
func (s *Store) TempPath() string {
	return s.path + ".tmp"
}

// Write serialises root, writes it to the temp file, and renames it
// over the snapshot. The rename is the commit point.
func (s *Store) Write(root *document.Value) error {
	out, err := s.encode(root)
	if err != nil {
		return err
	}

	tmp := s.TempPath()
	if err := os.WriteFile(tmp, out, filePerm); err != nil {
		return fmt.Errorf("snapshot: write temp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("snapshot: rename: %w", err)
	}
	return nil
}

func (s *Store) encode(root *document.Value) ([]byte, error) {
	if s.cipher != nil {
		sealed, err := s.cipher.SealJSON(root.Encode())
		if err != nil {
			return nil, fmt.Errorf("snapshot: seal: %w", err)
		}
		return sealed, nil
	}
	if s.pretty {
		return root.EncodePretty(), nil
	}
	return root.Encode(), nil
}

// Read recovers a leftover temp file, then loads the snapshot. The bool
// reports whether a snapshot existed. Parse failures and envelope or
// decryption failures surface to the caller.
func (s *Store) Read() (*document.Value, bool, error) {
	s.recoverTemp()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("snapshot: read: %w", err)
	}

	root, err := s.decode(data)
	if err != nil {
		return nil, true, err
	}
	return root, true, nil
}

func (s *Store) decode(data []byte) (*document.Value, error) {
	if s.cipher != nil {
		plain, err := s.cipher.OpenJSON(data)
		if err != nil {
			return nil, fmt.Errorf("snapshot: open envelope: %w", err)
		}
		data = plain
	}
	root, err := document.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	return root, nil
}

// recoverTemp renames a leftover temp file over the snapshot. Presence
// of the temp file means the previous save wrote it completely but died
// before (or during) the rename.
func (s *Store) recoverTemp() {
	tmp := s.TempPath()
	if _, err := os.Stat(tmp); err != nil {
		return
	}
	_ = os.Rename(tmp, s.path)
}
