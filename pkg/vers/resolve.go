package vers

import "fmt"

// UpgradeStep is one resolved hop of an upgrade path.
type UpgradeStep struct {
	From int
	To   int
	fn   TransformFunc
}

// DowngradeStep is a resolved direct downgrade edge.
type DowngradeStep struct {
	From int
	To   int
	fn   TransformFunc
}

// ResolveUpgrade computes the exact ordered sequence of upgrade transforms
// moving state from version from to version to. Both endpoints must be
// present in the chain and from must not exceed to; otherwise ErrNoPath is
// returned. Resolving a version onto itself yields an empty path.
//
// The path is constructed greedily backward from the target: at each hop,
// among the edges owned by the current version, the edge with the smallest
// source still at or above from is selected. Picking the smallest
// admissible source skips the most intermediate versions per hop, giving
// the fewest transform calls without ever overshooting below from.
func (c *Chain) ResolveUpgrade(from, to int) ([]UpgradeStep, error) {
	if _, ok := c.Version(from); !ok {
		return nil, wrapMsg(ErrNoPath, "version %d not in chain", from)
	}
	if _, ok := c.Version(to); !ok {
		return nil, wrapMsg(ErrNoPath, "version %d not in chain", to)
	}
	if from > to {
		return nil, wrapMsg(ErrNoPath, "cannot upgrade from %d to older version %d", from, to)
	}

	var reversed []UpgradeStep
	current := to
	for current > from {
		sv := c.versions[current-1]
		best := 0
		for source := range sv.upgraders {
			if source >= from && (best == 0 || source < best) {
				best = source
			}
		}
		if best == 0 {
			return nil, wrapMsg(ErrNoPath, "version %d has no upgrade edge from %d or later", current, from)
		}
		reversed = append(reversed, UpgradeStep{From: best, To: current, fn: sv.upgraders[best]})
		current = best
	}

	path := make([]UpgradeStep, len(reversed))
	for i, step := range reversed {
		path[len(reversed)-1-i] = step
	}
	return path, nil
}

// ApplyUpgrade folds the resolved path over the initial state, calling each
// transform in order. Every transform receives its own copy of the state
// and may mutate it freely. A transform failure is wrapped with
// ErrUpgradeTransform and the failing edge's endpoints.
func (c *Chain) ApplyUpgrade(path []UpgradeStep, initial State) (State, error) {
	state := initial
	for _, step := range path {
		next, err := step.fn(state.Clone())
		if err != nil {
			return nil, fmt.Errorf("%w: edge %d->%d: %w", ErrUpgradeTransform, step.From, step.To, err)
		}
		state = next
	}
	return state, nil
}

// ResolveDowngrade looks up the direct downgrade edge owned by version from
// with target to. Downgrade edges are intentionally not chained: absent a
// direct edge the resolution fails with ErrNoDowngrade even when a sequence
// of single downgrades would reach the target.
func (c *Chain) ResolveDowngrade(from, to int) (DowngradeStep, error) {
	sv, ok := c.Version(from)
	if !ok {
		return DowngradeStep{}, wrapMsg(ErrNoDowngrade, "version %d not in chain", from)
	}
	if to >= from || to < 1 {
		return DowngradeStep{}, wrapMsg(ErrNoDowngrade, "version %d is not older than %d", to, from)
	}
	fn, ok := sv.downgraders[to]
	if !ok {
		return DowngradeStep{}, wrapMsg(ErrNoDowngrade, "version %d has no downgrade edge to %d", from, to)
	}
	return DowngradeStep{From: from, To: to, fn: fn}, nil
}
