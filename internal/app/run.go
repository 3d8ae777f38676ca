package app

import (
	"context"
	"fmt"

	"github.com/vk/bootcfg/internal/ctxlog"
	"github.com/vk/bootcfg/internal/resource"
	"github.com/vk/bootcfg/internal/reskeys"
)

// Run resolves the configured seed URIs and writes the result in the
// configured output format.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	seeds := make([]resource.Seed, 0, len(a.config.Seeds))
	for i, uri := range a.config.Seeds {
		res, err := reskeys.FromURI(fmt.Sprintf("seed%d", i), uri, nil)
		if err != nil {
			return fmt.Errorf("seed uri %q: %w", uri, err)
		}
		seeds = append(seeds, res)
	}

	batch, err := a.engine.Resolve(ctx, seeds...)
	if err != nil {
		return err
	}
	a.logger.Info("Resolution finished.", "seeds", len(seeds), "entries", len(batch))

	return a.print(batch)
}
