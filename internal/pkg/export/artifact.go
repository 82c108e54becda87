package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

// Artifact is the per-fixture output table. Close must be called exactly
// once on every path; it flushes whatever was written.
type Artifact interface {
	WriteHeader() error
	WriteRow(row models.FacetRow) error
	Close() error
	// Name is the identifier the artifact was created with.
	Name() string
}

// ArtifactSink creates artifacts by identifier.
type ArtifactSink interface {
	Create(name string) (Artifact, error)
}

// EncodeCells serializes the ordered cell values as a JSON array of strings.
func EncodeCells(cells []string) (string, error) {
	if cells == nil {
		cells = []string{}
	}
	b, err := json.Marshal(cells)
	if err != nil {
		return "", fmt.Errorf("encode cells: %w", err)
	}
	return string(b), nil
}

// DecodeCells is the inverse of EncodeCells.
func DecodeCells(s string) ([]string, error) {
	var cells []string
	if err := json.Unmarshal([]byte(s), &cells); err != nil {
		return nil, fmt.Errorf("decode cells: %w", err)
	}
	return cells, nil
}

// FileSink writes CSV artifacts into a directory.
type FileSink struct {
	Dir string
}

// NewFileSink creates dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileSink{Dir: dir}, nil
}

func (s *FileSink) Create(name string) (Artifact, error) {
	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}
	return &csvArtifact{name: name, path: path, f: f, w: csv.NewWriter(f)}, nil
}

type csvArtifact struct {
	name   string
	path   string
	f      *os.File
	w      *csv.Writer
	closed bool
}

func (a *csvArtifact) Name() string { return a.name }

// Path returns the file the artifact is written to.
func (a *csvArtifact) Path() string { return a.path }

func (a *csvArtifact) WriteHeader() error {
	return a.write(models.ArtifactHeader)
}

func (a *csvArtifact) WriteRow(row models.FacetRow) error {
	cells, err := EncodeCells(row.Cells)
	if err != nil {
		return err
	}
	return a.write([]string{row.PlayerName, row.TeamLabel, row.FacetName, cells})
}

func (a *csvArtifact) write(record []string) error {
	if a.closed {
		return fmt.Errorf("artifact %s: write after close", a.name)
	}
	if err := a.w.Write(record); err != nil {
		return fmt.Errorf("write artifact %s: %w", a.name, err)
	}
	return nil
}

func (a *csvArtifact) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.w.Flush()
	return errors.Join(a.w.Error(), a.f.Close())
}

// MemorySink keeps artifacts in memory.
type MemorySink struct {
	mu        sync.Mutex
	artifacts map[string]*MemoryArtifact
	order     []string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{artifacts: make(map[string]*MemoryArtifact)}
}

func (s *MemorySink) Create(name string) (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &MemoryArtifact{name: name}
	if _, ok := s.artifacts[name]; !ok {
		s.order = append(s.order, name)
	}
	s.artifacts[name] = a
	return a, nil
}

// Names returns the artifact names in creation order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

// Get returns the artifact created under name.
func (s *MemorySink) Get(name string) (*MemoryArtifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.artifacts[name]
	return a, ok
}

// MemoryArtifact records what was written to it.
type MemoryArtifact struct {
	name   string
	Header []string
	Rows   []models.FacetRow
	Closes int
}

func (a *MemoryArtifact) Name() string { return a.name }

func (a *MemoryArtifact) WriteHeader() error {
	a.Header = append([]string(nil), models.ArtifactHeader...)
	return nil
}

func (a *MemoryArtifact) WriteRow(row models.FacetRow) error {
	if a.Closes > 0 {
		return fmt.Errorf("artifact %s: write after close", a.name)
	}
	a.Rows = append(a.Rows, row)
	return nil
}

func (a *MemoryArtifact) Close() error {
	a.Closes++
	return nil
}
