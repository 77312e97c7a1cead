package vers

import (
	"fmt"
	"sync"
)

// View is a read-only, lazily recomputed projection of a record at an older
// version. It holds no state of its own: every read derives the downgraded
// field set from the owning record's current state through exactly one
// downgrade edge. The result is cached and stamped with the record
// generation it was computed from, so a Set on the record invalidates it.
type View struct {
	record *Record
	schema *SchemaVersion
	step   DowngradeStep

	mu     sync.Mutex
	cached map[string]any
	gen    uint64
	valid  bool
}

// Get returns the value of the named field in the downgraded projection,
// recomputing it first if the record changed since the last read. Fields
// the downgraded schema lacks fail with ErrFieldNotPresent.
func (v *View) Get(name string) (any, error) {
	if !v.schema.Has(name) {
		return nil, wrapName(ErrFieldNotPresent, name)
	}
	values, err := v.refresh()
	if err != nil {
		return nil, err
	}
	return values[name], nil
}

// Set always fails with ErrReadOnly: all fields of a view are read-only.
func (v *View) Set(name string, value any) error {
	return wrapName(ErrReadOnly, name)
}

// State returns the view's target version tag and the downgraded
// serializable field mapping, recomputed if stale.
func (v *View) State() (int, State, error) {
	values, err := v.refresh()
	if err != nil {
		return 0, nil, err
	}
	state := make(State, len(v.schema.attrs))
	for _, attr := range v.schema.attrs {
		state[attr.Name] = cloneValue(attr.state(values[attr.Name]))
	}
	return v.step.To, state, nil
}

// Version returns the view's version handle, which reports only the view's
// own target version as reachable.
func (v *View) Version() Handle {
	return Handle{value: v.step.To, floor: v.step.To}
}

// refresh returns the cached downgraded values, recomputing them when the
// record's generation moved past the cached one. The snapshot of record
// state and its generation are taken atomically, so the projection never
// observes a partially updated field set.
func (v *View) refresh() (map[string]any, error) {
	snap, gen := v.record.snapshot()

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.valid && v.gen == gen {
		return v.cached, nil
	}

	state, err := v.step.fn(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: edge %d->%d: %w", ErrDowngradeTransform, v.step.From, v.step.To, err)
	}
	values, err := buildValues(v.schema, state, true)
	if err != nil {
		return nil, err
	}

	v.cached = values
	v.gen = gen
	v.valid = true
	return values, nil
}
