package vers

// State is the serializable form of a record's field values, exchanged at
// the State/FromState boundary and passed to upgrade and downgrade
// transforms. Transforms may mutate the map they receive; each call gets
// its own copy.
type State map[string]any

// Clone returns a shallow-plus-containers copy of the state: nested maps
// and slices of the common serializable shapes are copied, everything else
// is shared.
func (s State) Clone() State {
	if s == nil {
		return nil
	}
	out := make(State, len(s))
	for k, v := range s {
		out[k] = cloneValue(v)
	}
	return out
}

// TransformFunc converts a field mapping from one schema version to another.
// The input contains exactly the source version's fields; the output must
// contain exactly the target version's fields.
type TransformFunc func(State) (State, error)

// ValidateFunc canonicalizes a field value into its desired type, returning
// the canonical value or an error if the value is invalid.
type ValidateFunc func(any) (any, error)

// GetStateFunc converts a field value into its serializable form. The
// result must be acceptable to the attribute's ValidateFunc.
type GetStateFunc func(any) any

// Attribute describes one field of a schema version: its default, its
// validator, and its state-extraction hook.
type Attribute struct {
	Name string

	// Default is the value used when the field is omitted at construction.
	// Mutable defaults (maps, slices) are copied per record, never shared.
	Default any

	// Required marks the field as having no default; construction fails
	// with ErrMissingField when no value is supplied.
	Required bool

	// Validate, when set, canonicalizes and checks values passed to
	// construction, Set, and FromState.
	Validate ValidateFunc

	// GetState, when set, serializes the value when record state is
	// requested.
	GetState GetStateFunc
}

// validate runs the attribute's validator, or passes the value through
// unchanged when none is declared.
func (a Attribute) validate(v any) (any, error) {
	if a.Validate == nil {
		return v, nil
	}
	return a.Validate(v)
}

// state runs the attribute's state-extraction hook, or passes the value
// through unchanged when none is declared.
func (a Attribute) state(v any) any {
	if a.GetState == nil {
		return v
	}
	return a.GetState(v)
}

// defaultValue returns a per-record copy of the attribute's default so that
// two records never share mutable default storage.
func (a Attribute) defaultValue() any {
	return cloneValue(a.Default)
}

// cloneValue copies the container shapes that commonly appear in
// serializable state. Scalars and unrecognized types are returned as-is.
func cloneValue(v any) any {
	switch val := v.(type) {
	case State:
		return val.Clone()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []int:
		out := make([]int, len(val))
		copy(out, val)
		return out
	default:
		return v
	}
}
