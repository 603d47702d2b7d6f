package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"lawkit/domain/law"
	"lawkit/internal/analysis"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

const bytesPerMB = 1 << 20

// Dispatcher routes a law identifier to its analyzer and runs it over every
// dataset of the input.
type Dispatcher struct {
	registry *analysis.Registry
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher over a fresh analyzer registry
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dispatcher")
	return &Dispatcher{
		registry: analysis.NewRegistry(logger),
		logger:   logger,
	}
}

// Law resolves the two option records and analyzes the input.
func (d *Dispatcher) Law(ctx context.Context, lawID string, input law.Input, generic *config.GenericOptions, specific *config.LawOptions) ([]law.Result, error) {
	if _, err := parseID(lawID); err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(generic, specific)
	if err != nil {
		return nil, err
	}
	return d.Analyze(ctx, lawID, input, cfg)
}

// Analyze runs the analyzer for lawID with an already resolved configuration.
// Results follow the order of the input datasets.
func (d *Dispatcher) Analyze(ctx context.Context, lawID string, input law.Input, cfg *config.Resolved) ([]law.Result, error) {
	id, err := parseID(lawID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if err := d.checkMemory(input, cfg); err != nil {
		return nil, err
	}

	start := time.Now()
	if id == law.Generation {
		out, err := d.registry.Generator().Generate(ctx, input.Spec, cfg)
		if err != nil {
			return nil, err
		}
		d.logger.Debug("generated sample", "distribution", out.DataType, "count", out.Count, "elapsed", time.Since(start))
		return []law.Result{out}, nil
	}

	analyzer, ok := d.registry.Get(id)
	if !ok {
		return nil, errors.UnknownLaw(lawID)
	}

	datasets := selectDatasets(input.Datasets, cfg)
	if len(datasets) == 0 {
		return nil, errors.InsufficientData(string(id), "no dataset left after path filtering")
	}

	results := make([]law.Result, len(datasets))
	analyzeOne := func(ctx context.Context, i int) error {
		res, err := analyzer.Analyze(ctx, datasets[i], cfg)
		if err != nil {
			if len(datasets) > 1 {
				return errors.Wrapf(err, "dataset %q", datasets[i].Path)
			}
			return err
		}
		results[i] = res
		return nil
	}

	if cfg.LawSettings().EnableParallelProcessing && len(datasets) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i := range datasets {
			g.Go(func() error { return analyzeOne(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range datasets {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := analyzeOne(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	d.logger.Debug("analysis complete",
		"law", id,
		"datasets", len(datasets),
		"elapsed", time.Since(start))
	return results, nil
}

// parseID accepts the exact identifiers only; aliases belong to the CLI.
func parseID(lawID string) (law.ID, error) {
	if id, ok := law.Parse(lawID); ok {
		return id, nil
	}
	return "", errors.UnknownLaw(lawID)
}

// selectDatasets drops datasets whose path matches IgnoreKeys or does not
// contain PathFilter.
func selectDatasets(datasets []law.Dataset, cfg *config.Resolved) []law.Dataset {
	out := make([]law.Dataset, 0, len(datasets))
	for _, ds := range datasets {
		if cfg.IgnoreKeys != nil && cfg.IgnoreKeys.MatchString(ds.Path) {
			continue
		}
		if cfg.PathFilter != "" && !strings.Contains(ds.Path, cfg.PathFilter) {
			continue
		}
		out = append(out, ds)
	}
	return out
}

// checkMemory enforces memory_limit_mb. With memory optimization on, an
// oversized input is accepted and analyzers batch their accumulation.
func (d *Dispatcher) checkMemory(input law.Input, cfg *config.Resolved) error {
	limit := cfg.LawSettings().MemoryLimitMB
	if limit <= 0 {
		return nil
	}
	estimated := input.EstimatedBytes()
	if spec := input.Spec; spec != nil && spec.Count != nil {
		estimated += int64(*spec.Count) * 8
	}
	if estimated <= int64(limit)*bytesPerMB {
		return nil
	}
	if !cfg.UseMemoryOptimization {
		return errors.ComputationError("dispatcher", "memory footprint",
			fmt.Sprintf("input needs about %d MB, limit is %d MB; enable memory optimization to process it in batches",
				estimated/bytesPerMB+1, limit))
	}
	d.logger.Info("input exceeds memory limit, processing in batches",
		"estimated_bytes", estimated,
		"limit_mb", limit,
		"batch_size", cfg.BatchSize)
	return nil
}
