// Package state persists the identity of deployed resources between runs
// in a versioned local JSON file. The file records identifiers and
// endpoint outputs only; credentials never enter it.
package state

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/eleven-am/plinth/internal/domain"
)

// Version is the state file schema version.
const Version = 1

// File is the on-disk state shape. Serial increments on every save so
// stale copies are detectable; Lineage pins the file to the stack that
// first wrote it.
type File struct {
	Version   int                 `json:"version"`
	Serial    int                 `json:"serial"`
	Lineage   string              `json:"lineage"`
	Stack     string              `json:"stack"`
	Region    string              `json:"region"`
	Resources map[string][]string `json:"resources"`
	Outputs   *domain.Outputs     `json:"outputs,omitempty"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// NewFile returns an empty state file for a stack.
func NewFile(stack, region string) *File {
	return &File{
		Version:   Version,
		Lineage:   newLineage(),
		Stack:     stack,
		Region:    region,
		Resources: make(map[string][]string),
	}
}

// Record stores the identifiers deployed for a resource kind, replacing
// any previous record for that kind.
func (f *File) Record(kind string, ids ...string) {
	if f.Resources == nil {
		f.Resources = make(map[string][]string)
	}
	f.Resources[kind] = append([]string(nil), ids...)
}

// IDs returns the recorded identifiers for a kind, or nil.
func (f *File) IDs(kind string) []string {
	return f.Resources[kind]
}

// ID returns the single recorded identifier for a kind, or "" when the
// kind is unrecorded.
func (f *File) ID(kind string) string {
	ids := f.Resources[kind]
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. A missing file is not an error: it returns
// (nil, nil) so callers fall back to live lookups.
func (s *Store) Load() (*File, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state file %s: %w", s.path, err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse state file %s: %w", s.path, err)
	}
	if file.Version > Version {
		return nil, fmt.Errorf("state file %s has version %d, this build understands up to %d", s.path, file.Version, Version)
	}
	return &file, nil
}

// Save bumps the serial and writes the file atomically via a temp file
// and rename, so a crash mid-write never corrupts existing state.
func (s *Store) Save(file *File) error {
	file.Serial++
	file.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename state file %s: %w", s.path, err)
	}
	return nil
}

// Remove deletes the state file. Removing an absent file is a no-op.
func (s *Store) Remove() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove state file %s: %w", s.path, err)
	}
	return nil
}

func newLineage() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// a timestamp so saves still work.
		return fmt.Sprintf("t-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
