// Package runner drives manifest documents through the resource modules:
// one-shot apply and destroy runs, and a watch loop that re-applies on
// file changes.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ccloudctl/internal/ccloud"
	"ccloudctl/internal/manifest"
	"ccloudctl/internal/reconcile"
	"ccloudctl/internal/resource"
	"ccloudctl/pkg/logging"
)

// Runner applies manifest documents through the module registry.
type Runner struct {
	registry *resource.Registry
}

// New creates a runner over the given registry.
func New(registry *resource.Registry) *Runner {
	return &Runner{registry: registry}
}

// RunError records one document that could not be applied.
type RunError struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	File  string `json:"file,omitempty"`
	Error string `json:"error"`
}

// Summary is the outcome of one run over a set of documents. A failing
// document lands in Errors and the run carries on with the rest; only
// rejected credentials stop a run early.
type Summary struct {
	RunID     string            `json:"run_id"`
	CheckMode bool              `json:"check_mode,omitempty"`
	Results   []resource.Result `json:"results"`
	Errors    []RunError        `json:"errors,omitempty"`
	Changed   int               `json:"changed"`
	Unchanged int               `json:"unchanged"`
	Failed    int               `json:"failed"`
}

// Succeeded reports whether every document applied cleanly.
func (s *Summary) Succeeded() bool {
	return s.Failed == 0
}

// Apply reconciles the documents in order. The returned error is non-nil
// only when the run had to stop early; per-document failures land in the
// summary instead.
func (r *Runner) Apply(ctx context.Context, docs []manifest.Document, opts reconcile.Options) (*Summary, error) {
	return r.run(ctx, docs, opts)
}

// Destroy forces every document absent, in reverse order so dependents go
// before the resources they live in.
func (r *Runner) Destroy(ctx context.Context, docs []manifest.Document, opts reconcile.Options) (*Summary, error) {
	reversed := make([]manifest.Document, 0, len(docs))
	for i := len(docs) - 1; i >= 0; i-- {
		doc := docs[i]
		doc.State = manifest.StateAbsent
		reversed = append(reversed, doc)
	}
	return r.run(ctx, reversed, opts)
}

func (r *Runner) run(ctx context.Context, docs []manifest.Document, opts reconcile.Options) (*Summary, error) {
	summary := &Summary{
		RunID:     uuid.New().String(),
		CheckMode: opts.CheckMode,
		Results:   []resource.Result{},
	}
	logging.Info("Runner", "Run %s: %d document(s), check=%t", summary.RunID, len(docs), opts.CheckMode)

	for _, doc := range docs {
		result, err := r.applyOne(ctx, doc, opts)
		if err != nil {
			// Rejected credentials doom every remaining document the same
			// way, so the run stops instead of hammering the control plane.
			if ccloud.IsUnauthorized(err) {
				logging.Error("Runner", err, "Run %s aborted: credentials rejected", summary.RunID)
				return summary, fmt.Errorf("failed to apply %s %q: %w", doc.Kind, doc.Name, err)
			}

			logging.Error("Runner", err, "%s %q failed", doc.Kind, doc.Name)
			summary.Errors = append(summary.Errors, RunError{
				Kind:  doc.Kind,
				Name:  doc.Name,
				File:  doc.File,
				Error: err.Error(),
			})
			summary.Failed++
			continue
		}

		summary.Results = append(summary.Results, *result)
		if result.Changed {
			summary.Changed++
			logging.Info("Runner", "%s %q: %s", result.Kind, result.Name, result.Action)
		} else {
			summary.Unchanged++
			logging.Debug("Runner", "%s %q already in shape", result.Kind, result.Name)
		}
	}
	return summary, nil
}

func (r *Runner) applyOne(ctx context.Context, doc manifest.Document, opts reconcile.Options) (*resource.Result, error) {
	module, err := r.registry.Get(doc.Kind)
	if err != nil {
		return nil, err
	}
	if !resource.SupportsState(module, doc.State) {
		return nil, fmt.Errorf("%s %q does not support state %q", module.Kind(), doc.Name, doc.State)
	}

	start := time.Now()
	result, err := module.Apply(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.DurationMs = time.Since(start).Milliseconds()
	return result, nil
}
