package results

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const fileSuffix = ".json"

// ErrNotFound indicates no saved result has the requested id.
var ErrNotFound = errors.New("result not found")

// Record is one saved analysis run.
type Record struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	CreatedAt time.Time         `json:"created_at"`
	Inputs    map[string]string `json:"inputs,omitempty"`
	Result    json.RawMessage   `json:"result"`
}

// Store keeps records as individual JSON files in Dir.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store { return &Store{Dir: dir} }

// Save serializes v as a new record of the given kind.
func (s *Store) Save(kind string, inputs map[string]string, v any) (*Record, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	rec := &Record{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Inputs:    inputs,
		Result:    payload,
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure results dir: %w", err)
	}
	data, err := prettyJSON(rec)
	if err != nil {
		return nil, err
	}
	if err := safeWriteFile(s.path(rec.ID), data); err != nil {
		return nil, err
	}
	return rec, nil
}

// Get loads the record with the given id.
func (s *Store) Get(id string) (*Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q is not a valid id", ErrNotFound, id)
	}
	b, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read result: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse result %s: %w", id, err)
	}
	return &rec, nil
}

// List returns every record in the store, oldest first. A missing directory
// is an empty store.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read results dir: %w", err)
	}
	var out []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileSuffix) {
			continue
		}
		rec, err := s.Get(strings.TrimSuffix(e.Name(), fileSuffix))
		if err != nil {
			continue // foreign or partial file
		}
		out = append(out, *rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) path(id string) string { return filepath.Join(s.Dir, id+fileSuffix) }

// safeWriteFile writes data to a temp file and atomically renames it into place.
func safeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

func prettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// Pretty renders the record as indented JSON.
func (r *Record) Pretty() ([]byte, error) {
	return prettyJSON(r)
}

// Num returns x for JSON output, or nil when x is NaN or infinite.
func Num(x float64) *float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	return &x
}
