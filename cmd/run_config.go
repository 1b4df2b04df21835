package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/fdkg-lab/fdkg-advisor/advisor"
	"github.com/fdkg-lab/fdkg-advisor/advisor/ingest"
	"github.com/fdkg-lab/fdkg-advisor/advisor/pipeline"
)

const defaultSuccessThreshold = 90.0

// SweepConfig represents a sweep.yaml file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type SweepConfig struct {
	Datasets         []DatasetConfig          `yaml:"datasets" validate:"required,min=1,dive"`
	Grid             *advisor.Grid            `yaml:"grid" validate:"omitempty"`
	SuccessThreshold float64                  `yaml:"success_threshold" validate:"gte=0,lte=100"` // percent or fraction; 0 keeps the default
	MinGuardians     advisor.MinGuardianQuery `yaml:"min_guardians"`
	Duplicates       string                   `yaml:"duplicates" validate:"omitempty,oneof=reject first max mean"`
	Scale            string                   `yaml:"scale" validate:"omitempty,oneof=auto percent fraction"`
	OutputDir        string                   `yaml:"output_dir"`
}

// DatasetConfig names one simulator output file. A relative path is resolved
// against the directory of the sweep file.
type DatasetConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path" validate:"required"`
}

// LoadSweepConfig parses and validates a sweep file.
// Uses strict field checking: typos must cause errors.
func LoadSweepConfig(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sweep config: %w", err)
	}
	var cfg SweepConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing sweep config %s: %w", path, err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating sweep config %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range cfg.Datasets {
		if !filepath.IsAbs(cfg.Datasets[i].Path) {
			cfg.Datasets[i].Path = filepath.Join(base, cfg.Datasets[i].Path)
		}
	}
	return &cfg, nil
}

// NormalizeTau accepts a success threshold either as a percentage (values above 1)
// or as a fraction, and returns the fraction.
func NormalizeTau(v float64) float64 {
	if v > 1 {
		return v / 100
	}
	return v
}

// parseDataArg splits a --data value of the form "name=path" or "path".
func parseDataArg(arg string) DatasetConfig {
	if name, path, ok := strings.Cut(arg, "="); ok && name != "" && !strings.ContainsAny(name, `/\`) {
		return DatasetConfig{Name: name, Path: path}
	}
	return DatasetConfig{Path: arg}
}

// runPlan is the merged outcome of the sweep file and the command-line flags.
type runPlan struct {
	Datasets  []DatasetConfig
	Params    pipeline.Params
	Scale     ingest.ScaleMode
	Policy    ingest.DuplicatePolicy
	OutputDir string
}

// load reads every dataset of the plan.
func (p *runPlan) load() ([]pipeline.Input, error) {
	inputs := make([]pipeline.Input, 0, len(p.Datasets))
	for _, d := range p.Datasets {
		ds, err := ingest.LoadRecords(d.Path, ingest.Options{Name: d.Name, Scale: p.Scale, Duplicates: p.Policy})
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, pipeline.Input{Dataset: ds, Source: d.Path})
	}
	return inputs, nil
}

// sweepFlags are the flags shared by commands that compute a full run.
type sweepFlags struct {
	configPath  string
	data        []string
	tau         float64
	nodes       []int
	fdkg        []float64
	retentions  []float64
	mgRetention float64
	mgThreshold int
	duplicates  string
	scale       string
}

func (f *sweepFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Sweep YAML file (datasets, grid, threshold, pivot query)")
	fs.StringSliceVar(&f.data, "data", nil, "Simulation CSV as path or name=path; repeatable, replaces the config's datasets")
	fs.Float64Var(&f.tau, "success-threshold", defaultSuccessThreshold, "Minimum success rate, as a percentage (90) or a fraction (0.9)")
	fs.IntSliceVar(&f.nodes, "nodes", nil, "Grid node counts (default: every value in the data)")
	fs.Float64SliceVar(&f.fdkg, "fdkg", nil, "Grid FDKG participation fractions (default: every value in the data)")
	fs.Float64SliceVar(&f.retentions, "retention", nil, "Grid tallier retention fractions (default: every value in the data)")
	fs.Float64Var(&f.mgRetention, "min-guardians-retention", 0.9, "Tallier retention of the minimal-guardian matrix")
	fs.IntVar(&f.mgThreshold, "min-guardians-threshold", 0, "Fixed threshold of the minimal-guardian matrix (0 = any)")
	fs.StringVar(&f.duplicates, "duplicates", string(ingest.DuplicateReject), "Duplicate configuration policy (reject, first, max, mean)")
	fs.StringVar(&f.scale, "scale", string(ingest.ScaleAuto), "Percentage column interpretation (auto, percent, fraction)")
}

// resolve merges the sweep file (if any) with the flags. Flags set on the command
// line override file values; file values override flag defaults.
func (f *sweepFlags) resolve(fs *pflag.FlagSet) (*runPlan, error) {
	cfg := &SweepConfig{}
	if f.configPath != "" {
		loaded, err := LoadSweepConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	plan := &runPlan{
		Datasets:  cfg.Datasets,
		OutputDir: cfg.OutputDir,
		Params: pipeline.Params{
			Tau:          NormalizeTau(f.tau),
			Grid:         cfg.Grid,
			MinGuardians: advisor.MinGuardianQuery{Retention: f.mgRetention, Threshold: f.mgThreshold},
		},
		Scale:  ingest.ScaleMode(f.scale),
		Policy: ingest.DuplicatePolicy(f.duplicates),
	}

	if fs.Changed("data") || len(plan.Datasets) == 0 {
		plan.Datasets = make([]DatasetConfig, 0, len(f.data))
		for _, arg := range f.data {
			plan.Datasets = append(plan.Datasets, parseDataArg(arg))
		}
	}
	if len(plan.Datasets) == 0 {
		return nil, fmt.Errorf("%w: no dataset given (use --data or --config)", advisor.ErrMissingInput)
	}

	if !fs.Changed("success-threshold") && cfg.SuccessThreshold != 0 {
		plan.Params.Tau = NormalizeTau(cfg.SuccessThreshold)
	}
	if f.configPath != "" {
		if !fs.Changed("min-guardians-retention") {
			plan.Params.MinGuardians.Retention = cfg.MinGuardians.Retention
		}
		if !fs.Changed("min-guardians-threshold") {
			plan.Params.MinGuardians.Threshold = cfg.MinGuardians.Threshold
		}
	}
	if !fs.Changed("duplicates") && cfg.Duplicates != "" {
		plan.Policy = ingest.DuplicatePolicy(cfg.Duplicates)
	}
	if !fs.Changed("scale") && cfg.Scale != "" {
		plan.Scale = ingest.ScaleMode(cfg.Scale)
	}

	gridFlags := 0
	for _, name := range []string{"nodes", "fdkg", "retention"} {
		if fs.Changed(name) {
			gridFlags++
		}
	}
	switch gridFlags {
	case 0:
	case 3:
		plan.Params.Grid = &advisor.Grid{Nodes: f.nodes, FDKGPercentages: f.fdkg, Retentions: f.retentions}
	default:
		return nil, fmt.Errorf("%w: --nodes, --fdkg and --retention must be given together", advisor.ErrInvalidGrid)
	}

	if !ingest.IsValidDuplicatePolicy(string(plan.Policy)) {
		return nil, fmt.Errorf("unknown duplicate policy %q", plan.Policy)
	}
	if !ingest.IsValidScaleMode(string(plan.Scale)) {
		return nil, fmt.Errorf("unknown scale mode %q", plan.Scale)
	}
	if err := advisor.ValidateTau(plan.Params.Tau); err != nil {
		return nil, err
	}
	return plan, nil
}
