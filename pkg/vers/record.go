package vers

import (
	"fmt"
	"sync"
)

// Record holds field values at its chain's latest version. The record
// exclusively owns its values; views derive state on demand and never own
// any. The internal lock keeps Set atomic with respect to view
// recomputation so a view always reads a single consistent snapshot.
type Record struct {
	chain *Chain

	mu     sync.RWMutex
	values map[string]any
	gen    uint64
}

// NewRecord constructs a record at the chain's latest version. For each
// attribute the provided value is validated and adopted; omitted attributes
// fall back to their declared default, copied so that mutable defaults are
// never shared between records. Omitting a required attribute fails with
// ErrMissingField; a rejected value fails with ErrValidation carrying the
// field name and cause. On any failure no record is created.
//
// Provided keys that are not attributes of the latest version are ignored.
func NewRecord(chain *Chain, fields map[string]any) (*Record, error) {
	values, err := buildValues(chain.latest(), fields, false)
	if err != nil {
		return nil, err
	}
	return &Record{chain: chain, values: values}, nil
}

// FromState constructs a record from externally supplied state tagged with
// its origin version. State at the latest version is validated and adopted
// directly; older state is first moved forward through the resolved upgrade
// path. A version absent from the chain fails with ErrUnknownVersion; state
// keys not declared by the latest version fail with ErrUnknownAttribute.
func FromState(chain *Chain, version int, fields State) (*Record, error) {
	if _, ok := chain.Version(version); !ok {
		return nil, wrapMsg(ErrUnknownVersion, "version %d", version)
	}

	state := fields
	if version != chain.Latest() {
		path, err := chain.ResolveUpgrade(version, chain.Latest())
		if err != nil {
			return nil, err
		}
		state, err = chain.ApplyUpgrade(path, fields)
		if err != nil {
			return nil, err
		}
	}

	values, err := buildValues(chain.latest(), state, true)
	if err != nil {
		return nil, err
	}
	return &Record{chain: chain, values: values}, nil
}

// buildValues validates a field mapping against a schema version and
// produces the value set to adopt. In strict mode keys not declared by the
// schema are rejected; construction from caller-supplied Go values is lax,
// deserialized state is strict.
func buildValues(sv *SchemaVersion, fields map[string]any, strict bool) (map[string]any, error) {
	if strict {
		for name := range fields {
			if !sv.Has(name) {
				return nil, wrapName(ErrUnknownAttribute, name)
			}
		}
	}

	values := make(map[string]any, len(sv.attrs))
	for _, attr := range sv.attrs {
		raw, ok := fields[attr.Name]
		if !ok {
			if attr.Required {
				return nil, wrapName(ErrMissingField, attr.Name)
			}
			values[attr.Name] = attr.defaultValue()
			continue
		}
		v, err := attr.validate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", ErrValidation, attr.Name, err)
		}
		values[attr.Name] = v
	}
	return values, nil
}

// Chain returns the chain this record was declared under.
func (r *Record) Chain() *Chain {
	return r.chain
}

// Get returns the value of the named field. Fields not declared by the
// latest version fail with ErrFieldNotPresent.
func (r *Record) Get(name string) (any, error) {
	if !r.chain.latest().Has(name) {
		return nil, wrapName(ErrFieldNotPresent, name)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.values[name], nil
}

// Set validates and stores a new value for the named field, then bumps the
// record's generation so cached view projections recompute on next read.
// Rejected values fail with ErrValidation and leave the record unchanged.
func (r *Record) Set(name string, value any) error {
	attr, ok := r.chain.latest().Attribute(name)
	if !ok {
		return wrapName(ErrFieldNotPresent, name)
	}
	v, err := attr.validate(value)
	if err != nil {
		return fmt.Errorf("%w: field %q: %w", ErrValidation, name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name] = v
	r.gen++
	return nil
}

// State returns the record's version tag and serializable field mapping,
// produced by each attribute's state-extraction hook. The mapping is a
// fresh copy on every call.
func (r *Record) State() (int, State) {
	state, _ := r.snapshot()
	return r.chain.Latest(), state
}

// snapshot extracts the serializable state and the generation it was taken
// at, atomically with respect to Set.
func (r *Record) snapshot() (State, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sv := r.chain.latest()
	state := make(State, len(sv.attrs))
	for _, attr := range sv.attrs {
		// Clone so downstream transforms can mutate freely without
		// reaching back into the record's own storage.
		state[attr.Name] = cloneValue(attr.state(r.values[attr.Name]))
	}
	return state, r.gen
}

// OlderView returns a live, read-only projection of this record at the
// target version. The projection requires a direct downgrade edge from the
// latest version; absent one, OlderView fails with ErrNoDowngrade even when
// chained single downgrades would reach the target.
func (r *Record) OlderView(target int) (*View, error) {
	step, err := r.chain.ResolveDowngrade(r.chain.Latest(), target)
	if err != nil {
		return nil, err
	}
	sv, _ := r.chain.Version(target)
	return &View{record: r, schema: sv, step: step}, nil
}

// Version returns the record's version handle: the latest version number
// with reachability over every version of the chain, since default upgrade
// edges guarantee full upgrade connectivity down to version 1.
func (r *Record) Version() Handle {
	return Handle{value: r.chain.Latest(), floor: 1}
}

// Equal reports whether the other record shares this record's chain and
// holds the same field values.
func (r *Record) Equal(other *Record) bool {
	if other == nil || r.chain != other.chain {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	if len(r.values) != len(other.values) {
		return false
	}
	for name, v := range r.values {
		if !valueEqual(v, other.values[name]) {
			return false
		}
	}
	return true
}

// valueEqual compares field values, descending into the container shapes
// cloneValue understands.
func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case State:
		bv, ok := b.(State)
		if !ok {
			return false
		}
		return valueEqual(map[string]any(av), map[string]any(bv))
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, e := range av {
			if !valueEqual(e, bv[k]) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, e := range av {
			if !valueEqual(e, bv[i]) {
				return false
			}
		}
		return true
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, e := range av {
			if e != bv[i] {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
