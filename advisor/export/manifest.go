package export

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/trace"
)

// ManifestFile is the manifest's artifact name.
const ManifestFile = "manifest.yaml"

// Manifest describes one recommendation run.
type Manifest struct {
	RunID            string            `yaml:"run_id"`
	CreatedAt        time.Time         `yaml:"created_at"`
	SuccessThreshold float64           `yaml:"success_threshold"`
	Grid             *advisor.Grid     `yaml:"grid,omitempty"` // nil when each dataset used its own grid
	Datasets         []DatasetManifest `yaml:"datasets"`
}

// DatasetManifest records what was produced for one dataset.
type DatasetManifest struct {
	Name      string         `yaml:"name"`
	Source    string         `yaml:"source"`
	Records   int            `yaml:"records"`
	Summary   *trace.Summary `yaml:"summary"`
	Artifacts []string       `yaml:"artifacts"`
}

// NewManifest starts a manifest with a fresh run id.
func NewManifest(tau float64, grid *advisor.Grid, now time.Time) *Manifest {
	return &Manifest{
		RunID:            uuid.NewString(),
		CreatedAt:        now.UTC(),
		SuccessThreshold: tau,
		Grid:             grid,
	}
}

// WriteYAML renders the manifest.
func (m *Manifest) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return enc.Close()
}

// Artifacts names the files produced for one dataset.
type Artifacts struct {
	Recommendations string
	MinGuardians    string
	ConfigCounts    string
	ConfigOverlay   string
}

// ArtifactNames returns the per-dataset file names.
func ArtifactNames(dataset string) Artifacts {
	return Artifacts{
		Recommendations: fmt.Sprintf("recommendations_%s.csv", dataset),
		MinGuardians:    fmt.Sprintf("min_guardians_%s.csv", dataset),
		ConfigCounts:    fmt.Sprintf("config_counts_%s.csv", dataset),
		ConfigOverlay:   fmt.Sprintf("config_overlay_%s.csv", dataset),
	}
}

// List returns the names in staging order.
func (a Artifacts) List() []string {
	return []string{a.Recommendations, a.MinGuardians, a.ConfigCounts, a.ConfigOverlay}
}
