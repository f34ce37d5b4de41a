// SPDX-License-Identifier: MIT

package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rostro36/evodiff/engine"
	"gopkg.in/yaml.v3"
)

// Manifest records what produced a run directory's output.
type Manifest struct {
	RunID     string    `yaml:"run_id"`
	Mode      string    `yaml:"mode"`
	Created   time.Time `yaml:"created"`
	Requested int       `yaml:"requested"`
	Generated int       `yaml:"generated"`
	Failed    int       `yaml:"failed"`
	Truncated int       `yaml:"truncated"`
	Duration  string    `yaml:"duration"`
	Failures  []Failure `yaml:"failures,omitempty"`
	Config    any       `yaml:"config,omitempty"`
}

// Failure is one failed request in a manifest.
type Failure struct {
	Index int    `yaml:"index"`
	Error string `yaml:"error"`
}

// NewManifest summarizes rep; cfg is stored verbatim.
func NewManifest(rep *engine.Report, cfg any, created time.Time) Manifest {
	m := Manifest{
		RunID:     rep.RunID,
		Mode:      string(rep.Mode),
		Created:   created.UTC(),
		Requested: rep.Requested,
		Generated: rep.Generated,
		Failed:    rep.Failed,
		Truncated: rep.Truncated,
		Duration:  rep.Duration.String(),
		Config:    cfg,
	}
	for _, f := range rep.Failures() {
		m.Failures = append(m.Failures, Failure{Index: f.Index, Error: f.Err.Error()})
	}

	return m
}

// WriteManifest writes m as YAML to dir/manifest.yaml, replacing any
// previous manifest.
func WriteManifest(dir string, m Manifest) error {
	out, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("sink: manifest: %w", err)
	}
	if err = os.WriteFile(filepath.Join(dir, ManifestFile), out, 0o644); err != nil {
		return fmt.Errorf("sink: manifest: %w", err)
	}

	return nil
}

// ReadManifest loads dir/manifest.yaml. Config is decoded as generic YAML.
func ReadManifest(dir string) (Manifest, error) {
	var m Manifest
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return m, fmt.Errorf("sink: manifest: %w", err)
	}
	if err = yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("sink: manifest: %w", err)
	}

	return m, nil
}
