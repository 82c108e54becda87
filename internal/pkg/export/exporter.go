package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tahseenmorshed/FPLStats/internal/pkg/models"
)

// ManifestName is the file the run manifest is written to inside the output directory.
const ManifestName = "manifest.json"

// Export represents the run manifest
type Export struct {
	Timestamp     string          `json:"timestamp"`
	Range         RangeExport     `json:"range"`
	TotalFixtures int             `json:"total_fixtures"`
	TotalRows     int             `json:"total_rows"`
	Fixtures      []FixtureExport `json:"fixtures"`
	Error         string          `json:"error,omitempty"`
}

type RangeExport struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FixtureExport represents one fixture the run touched
type FixtureExport struct {
	Row      int      `json:"row"`
	Period   int      `json:"period"`
	HomeTeam string   `json:"home_team,omitempty"`
	AwayTeam string   `json:"away_team,omitempty"`
	Artifact string   `json:"artifact,omitempty"`
	Rows     int      `json:"rows"`
	Skipped  []string `json:"skipped_facets,omitempty"`
	Status   string   `json:"status"`
	Error    string   `json:"error,omitempty"`
}

// Exporter collects fixture results for the manifest
type Exporter struct {
	mu       sync.Mutex
	rng      models.PeriodRange
	fixtures []FixtureExport
	now      func() time.Time
}

// NewExporter creates a new exporter
func NewExporter(rng models.PeriodRange) *Exporter {
	return &Exporter{rng: rng, now: time.Now}
}

func (e *Exporter) Add(f FixtureExport) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fixtures = append(e.fixtures, f)
}

// Export builds the manifest. runErr is the fatal error that ended the run, if any.
func (e *Exporter) Export(runErr error) *Export {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := &Export{
		Timestamp:     e.now().UTC().Format(time.RFC3339),
		Range:         RangeExport{Start: int(e.rng.Start), End: int(e.rng.End)},
		TotalFixtures: len(e.fixtures),
		Fixtures:      make([]FixtureExport, len(e.fixtures)),
	}
	copy(out.Fixtures, e.fixtures)
	for _, f := range e.fixtures {
		out.TotalRows += f.Rows
	}
	if runErr != nil {
		out.Error = runErr.Error()
	}
	return out
}

// WriteFile writes the manifest as indented JSON into dir.
func (e *Exporter) WriteFile(dir string, runErr error) (string, error) {
	data, err := json.MarshalIndent(e.Export(runErr), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}
