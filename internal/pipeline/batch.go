package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	derrors "github.com/ppiankov/docket/internal/errors"
	"github.com/ppiankov/docket/internal/model"
	"github.com/ppiankov/docket/internal/reconcile"
	"github.com/ppiankov/docket/internal/worker"
)

// Manifest lists the cases of a batch run
//
//	cases:
//	  - id: doe-2024
//	    summons: doe/summons.html
//	    sentencing: https://court.example.org/orders/24CR00981
//	    police: doe/police.json
type Manifest struct {
	Cases []ManifestCase `yaml:"cases"`
}

// ManifestCase is one case of a batch. Relative paths are resolved against
// the manifest's directory.
type ManifestCase struct {
	ID         string `yaml:"id"`
	Summons    string `yaml:"summons,omitempty"`
	Sentencing string `yaml:"sentencing,omitempty"`
	Police     string `yaml:"police,omitempty"`
}

// LoadManifest reads and validates a batch manifest
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, derrors.Wrap(fmt.Errorf("parse manifest %s: %w", path, err),
			derrors.CategoryInvalidInput, derrors.CodeInvalidManifest, "")
	}
	if len(m.Cases) == 0 {
		return nil, derrors.Input(derrors.CodeInvalidManifest, "manifest %s lists no cases", path)
	}

	base := filepath.Dir(path)
	seen := make(map[string]bool, len(m.Cases))
	for i := range m.Cases {
		c := &m.Cases[i]
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			c.ID = fmt.Sprintf("case-%d", i+1)
		}
		if seen[c.ID] {
			return nil, derrors.Input(derrors.CodeInvalidManifest, "duplicate case id %q", c.ID)
		}
		seen[c.ID] = true

		c.Summons = resolveRef(base, c.Summons)
		c.Sentencing = resolveRef(base, c.Sentencing)
		c.Police = resolveRef(base, c.Police)
	}
	return &m, nil
}

// Documents returns the case's documents in priority order
func (c ManifestCase) Documents() []Document {
	var docs []Document
	refs := map[reconcile.Source]string{
		reconcile.SourceSummons:    c.Summons,
		reconcile.SourceSentencing: c.Sentencing,
		reconcile.SourcePolice:     c.Police,
	}
	for _, src := range reconcile.Priority {
		if ref := refs[src]; ref != "" {
			docs = append(docs, Document{Source: src, Ref: ref})
		}
	}
	return docs
}

// BatchResult is the outcome of one manifest case
type BatchResult struct {
	ID     string
	Record *model.CaseRecord
	Err    error
}

// ReconcileBatch reconciles every case of the manifest, at most workers at
// a time. Results follow manifest order.
func (p *Pipeline) ReconcileBatch(ctx context.Context, m *Manifest, workers int) []BatchResult {
	jobs := make([]worker.Job[*model.CaseRecord], len(m.Cases))
	for i, c := range m.Cases {
		c := c
		jobs[i] = func(ctx context.Context) (*model.CaseRecord, error) {
			return p.ReconcileDocuments(ctx, c.Documents())
		}
	}

	results := worker.Run(ctx, worker.NewPool(workers), jobs)

	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{ID: m.Cases[i].ID, Record: r.Value, Err: r.Err}
		if r.Err != nil {
			p.logger.Warn("pipeline: case failed", zap.String("case", m.Cases[i].ID), zap.Error(r.Err))
		}
	}
	return out
}

func resolveRef(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || IsRemote(ref) || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(base, ref)
}
