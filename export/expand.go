package export

import (
	"context"
	"fmt"
)

// ExpandAll drives the surface to a fixed point where no container it is
// willing to open remains collapsed. It returns the number of passes run
// and the IDs of containers that refused to open (still collapsed after a
// trigger). Refusers are never retried within a run: their subtree is
// simply absent from the final enumeration, which is preferred over
// looping forever on a surface that refuses to open.
func ExpandAll(ctx context.Context, s Surface, cfg Config) (passes int, stalled []NodeID, err error) {
	cfg.defaults()
	log := cfg.Logger

	refused := make(map[NodeID]bool)

	for passes = 0; passes < cfg.MaxPasses; passes++ {
		nodes, err := s.Enumerate(ctx)
		if err != nil {
			return passes, stalled, fmt.Errorf("export: enumerate (pass %d): %w", passes, err)
		}

		var batch []NodeID
		for _, n := range nodes {
			if n.Kind == KindContainer && n.State == StateCollapsed && !refused[n.ID] {
				batch = append(batch, n.ID)
			}
		}
		if len(batch) == 0 {
			return passes, stalled, nil // fixed point
		}

		log.Debug("export: expansion pass", "pass", passes, "collapsed", len(batch))

		for _, id := range batch {
			if err := s.Trigger(ctx, id, ActionExpand); err != nil {
				// A failed trigger is a stall, not a fatal error.
				log.Warn("export: expand trigger failed", "node", id, "error", err)
			}
			if err := sleep(ctx, cfg.ExpandSettle.Std()); err != nil {
				return passes, stalled, err
			}
		}
		if err := sleep(ctx, cfg.BatchSettle.Std()); err != nil {
			return passes, stalled, err
		}

		// Anything triggered this pass that still reports Collapsed refused
		// to open. Mark it so the next pass does not retry it.
		after, err := s.Enumerate(ctx)
		if err != nil {
			return passes, stalled, fmt.Errorf("export: enumerate after pass %d: %w", passes, err)
		}
		triggered := make(map[NodeID]bool, len(batch))
		for _, id := range batch {
			triggered[id] = true
		}
		for _, n := range after {
			if triggered[n.ID] && n.State == StateCollapsed {
				refused[n.ID] = true
				stalled = append(stalled, n.ID)
				log.Warn("export: container refused to expand, subtree omitted", "node", n.ID, "name", n.Name)
			}
		}
	}

	log.Warn("export: expansion pass cap reached", "passes", passes)
	return passes, stalled, nil
}
