package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"legisbase/internal/core"
	"legisbase/internal/source"
)

var _ source.Loader = (*Store)(nil)

// Store serves a fixed list of bills held in memory.
type Store struct {
	bills []core.Bill
	name  string
}

// seedFile is the on-disk layout of a YAML seed file.
type seedFile struct {
	Bills []core.Bill `yaml:"bills"`
}

func New(bills []core.Bill) *Store {
	return &Store{bills: cloneAll(bills), name: "memory"}
}

// NewFromFile reads bills from a YAML seed file. A missing or empty file
// falls back to the built-in bills; a malformed one is an error.
func NewFromFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Store{bills: DefaultBills(), name: "memory:builtin"}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	bills, err := DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	if len(bills) == 0 {
		return &Store{bills: DefaultBills(), name: "memory:builtin"}, nil
	}
	return &Store{bills: bills, name: "memory:" + path}, nil
}

// Load returns a copy of the stored bills.
func (s *Store) Load(_ context.Context) ([]core.Bill, error) {
	return cloneAll(s.bills), nil
}

func (s *Store) Name() string {
	return s.name
}

// DecodeYAML reads a seed document of the form `bills: [...]`.
func DecodeYAML(r io.Reader) ([]core.Bill, error) {
	var doc seedFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return doc.Bills, nil
}

// EncodeYAML writes bills in the seed file layout.
func EncodeYAML(w io.Writer, bills []core.Bill) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seedFile{Bills: bills}); err != nil {
		return err
	}
	return enc.Close()
}

func cloneAll(in []core.Bill) []core.Bill {
	out := make([]core.Bill, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}
