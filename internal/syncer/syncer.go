// Package syncer walks a preset tree and publishes each preset, with its
// matched audio preview, into blob storage and the catalog. Runs are
// idempotent: object keys and catalog rows derive from the preset's stable
// ID, and re-running over unchanged trees converges to the same state.
package syncer

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"presetcore/internal/assetid"
	"presetcore/internal/blob"
	"presetcore/internal/catalog"
	"presetcore/internal/match"
)

const (
	presetContentType  = "application/octet-stream"
	previewContentType = "audio/wav"

	defaultWorkers = 4
)

// Options configures an Orchestrator. PresetRoot, Matcher, Presets,
// Previews, and Catalog are required.
type Options struct {
	PresetRoot string
	Matcher    *match.Matcher
	Presets    blob.Store    // bucket for preset files
	Previews   blob.Store    // bucket for preview audio
	Catalog    catalog.Store // metadata rows, upserted per asset
	PresetExt  string        // defaults to match.DefaultPresetExt
	PreviewExt string        // defaults to match.DefaultPreviewExt
	Workers    int           // parallel asset pipelines, defaults to 4
	Logger     *slog.Logger  // defaults to slog.Default()
	Metrics    *Metrics      // optional
}

// Orchestrator drives one or more sync runs over a preset tree.
type Orchestrator struct {
	root       string
	matcher    *match.Matcher
	presets    blob.Store
	previews   blob.Store
	catalog    catalog.Store
	presetExt  string
	previewExt string
	workers    int
	log        *slog.Logger
	metrics    *Metrics
}

// New validates opts and returns an Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.PresetRoot == "" {
		return nil, fmt.Errorf("preset root is required")
	}
	if opts.Matcher == nil {
		return nil, fmt.Errorf("matcher is required")
	}
	if opts.Presets == nil || opts.Previews == nil {
		return nil, fmt.Errorf("preset and preview blob stores are required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("catalog store is required")
	}
	if opts.PresetExt == "" {
		opts.PresetExt = match.DefaultPresetExt
	}
	if opts.PreviewExt == "" {
		opts.PreviewExt = match.DefaultPreviewExt
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		root:       opts.PresetRoot,
		matcher:    opts.Matcher,
		presets:    opts.Presets,
		previews:   opts.Previews,
		catalog:    opts.Catalog,
		presetExt:  opts.PresetExt,
		previewExt: opts.PreviewExt,
		workers:    opts.Workers,
		log:        opts.Logger,
		metrics:    opts.Metrics,
	}, nil
}

// AssetError records a per-asset failure. Failures never abort the run; they
// are collected into the Summary.
type AssetError struct {
	Path  string // preset path relative to the root, forward slashes
	Stage string // "upload" or "catalog"
	Err   error
}

func (e AssetError) Error() string { return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Err) }

func (e AssetError) Unwrap() error { return e.Err }

// Summary reports the outcome of one run.
type Summary struct {
	Processed int          // preset files discovered
	Published int          // assets uploaded and catalogued
	Unmatched int          // presets with no preview, skipped entirely
	Failed    int          // assets that errored
	Failures  []AssetError // sorted by path
}

// Run discovers every preset under the root and publishes each one.
// Per-asset failures are collected rather than aborting; the returned error
// is non-nil only when discovery itself fails or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	rels, err := o.discover()
	if err != nil {
		return Summary{}, fmt.Errorf("discover presets: %w", err)
	}

	var (
		mu      sync.Mutex
		summary = Summary{Processed: len(rels)}
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, rel := range rels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			published, aerr := o.publish(ctx, rel)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case aerr != nil:
				summary.Failed++
				summary.Failures = append(summary.Failures, *aerr)
				o.metrics.countAsset("failed")
				o.log.Error("asset failed", "path", rel, "stage", aerr.Stage, "error", aerr.Err)
			case !published:
				summary.Unmatched++
				o.metrics.countAsset("unmatched")
				o.log.Warn("no preview found, skipping", "path", rel)
			default:
				summary.Published++
				o.metrics.countAsset("published")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Path < summary.Failures[j].Path
	})
	return summary, nil
}

// discover walks the preset root and returns the sorted forward-slash
// relative paths of every preset file.
func (o *Orchestrator) discover() ([]string, error) {
	var rels []string
	err := filepath.WalkDir(o.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), o.presetExt) {
			return nil
		}
		rel, err := filepath.Rel(o.root, p)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(rels)
	return rels, nil
}

// publish uploads one preset and its preview and upserts the catalog row.
// The false,nil return means the preset had no preview and was skipped.
func (o *Orchestrator) publish(ctx context.Context, rel string) (bool, *AssetError) {
	previewPath, ok := o.matcher.Match(rel)
	if !ok {
		return false, nil
	}

	id, err := assetid.FromPath(rel)
	if err != nil {
		return false, &AssetError{Path: rel, Stage: "upload", Err: err}
	}

	presetBytes, err := os.ReadFile(filepath.Join(o.root, filepath.FromSlash(rel)))
	if err != nil {
		return false, &AssetError{Path: rel, Stage: "upload", Err: err}
	}
	previewBytes, err := os.ReadFile(previewPath)
	if err != nil {
		return false, &AssetError{Path: rel, Stage: "upload", Err: err}
	}

	presetKey := id.String() + o.presetExt
	previewKey := id.String() + o.previewExt

	start := time.Now()
	if _, err := o.presets.Put(ctx, presetKey, bytes.NewReader(presetBytes), blob.PutOptions{
		ContentType: presetContentType,
		Overwrite:   true,
	}); err != nil {
		return false, &AssetError{Path: rel, Stage: "upload", Err: fmt.Errorf("put preset %s: %w", presetKey, err)}
	}
	if _, err := o.previews.Put(ctx, previewKey, bytes.NewReader(previewBytes), blob.PutOptions{
		ContentType: previewContentType,
		Overwrite:   true,
	}); err != nil {
		return false, &AssetError{Path: rel, Stage: "upload", Err: fmt.Errorf("put preview %s: %w", previewKey, err)}
	}
	o.metrics.observeUpload(time.Since(start))

	title := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	row := catalog.Row{
		ID:               id.String(),
		Title:            title,
		Visibility:       catalog.VisibilityPublic,
		PresetObjectKey:  presetKey,
		PreviewObjectKey: &previewKey,
		Source:           catalog.SourceSeed,
	}
	if err := o.catalog.Upsert(ctx, row); err != nil {
		return false, &AssetError{Path: rel, Stage: "catalog", Err: err}
	}

	o.log.Debug("asset published", "path", rel, "id", id.String())
	return true, nil
}
