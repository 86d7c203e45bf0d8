package hostsim

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/turbinectl/internal/config"
)

// Sweep runs each configuration on its own harness, at most workers at a
// time (GOMAXPROCS when workers < 1). Results keep the order of cfgs. The
// first failing run cancels those not yet started.
func Sweep(ctx context.Context, cfgs []*config.Config, opts Options, workers int) ([]*Result, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cfg := range cfgs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			h, err := New(cfg, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Name, err)
			}
			res, err := h.Run(ctx)
			results[i] = res
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Name, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
