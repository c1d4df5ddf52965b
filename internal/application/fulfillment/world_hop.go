package fulfillment

import (
	"context"
	"fmt"
)

// hop excludes the current world for the rest of the session and moves to
// the next candidate. Worlds that refuse the hop are excluded too.
func (e *Engine) hop(ctx context.Context, r *run) error {
	worlds := e.world.Worlds()
	current := worlds.Current(ctx)
	r.req.ExcludeWorld(current)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, ok := worlds.Next(ctx, e.config.Shop.HopStrategy, r.req.ExcludedWorlds())
		if !ok {
			return fmt.Errorf("no world left to hop to")
		}
		if err := e.pace(ctx); err != nil {
			return err
		}
		if err := worlds.Hop(ctx, next); err != nil {
			r.logger.Log("WARNING", "World hop refused", map[string]interface{}{
				"world": next,
				"error": err.Error(),
			})
			r.req.ExcludeWorld(next)
			continue
		}

		r.result.Hops++
		e.metrics.RecordWorldHop(string(e.config.Shop.HopStrategy))
		r.logger.Log("INFO", "Hopped world", map[string]interface{}{
			"from":     current,
			"to":       next,
			"excluded": len(r.req.ExcludedWorlds()),
		})
		return nil
	}
}
