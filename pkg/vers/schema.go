package vers

import "sort"

// Upgrader declares an upgrade edge owned by the version it appears on.
// From names the source version; zero means the immediately preceding
// version. Fn receives the source version's fields and must return the
// owning version's fields.
type Upgrader struct {
	From int
	Fn   TransformFunc
}

// Downgrader declares a downgrade edge owned by the version it appears on.
// To names the target version. Fn receives the owning version's fields and
// must return the target version's fields. Downgrade edges are never
// composed: only a direct edge from a record's current version is usable.
type Downgrader struct {
	To int
	Fn TransformFunc
}

// VersionDef declares one schema version for NewChain. Version numbers are
// positional: the first definition is version 1, the second version 2, and
// so on, which makes the 1..N numbering dense by construction.
//
// Attributes add to or override (by name) the previous version's attribute
// set; Remove masks inherited attributes by name. The resulting attribute
// set is computed once at chain build time.
type VersionDef struct {
	Attributes  []Attribute
	Remove      []string
	Upgraders   []Upgrader
	Downgraders []Downgrader
}

// SchemaVersion is one immutable numbered revision of a chain: the complete
// ordered attribute set plus the upgrade and downgrade edges it owns.
type SchemaVersion struct {
	version     int
	attrs       []Attribute
	index       map[string]int
	upgraders   map[int]TransformFunc
	downgraders map[int]TransformFunc
}

// Version returns the revision number, 1-based.
func (sv *SchemaVersion) Version() int {
	return sv.version
}

// Attributes returns a copy of the complete ordered attribute set.
func (sv *SchemaVersion) Attributes() []Attribute {
	out := make([]Attribute, len(sv.attrs))
	copy(out, sv.attrs)
	return out
}

// Attribute returns the named attribute and whether it is declared.
func (sv *SchemaVersion) Attribute(name string) (Attribute, bool) {
	i, ok := sv.index[name]
	if !ok {
		return Attribute{}, false
	}
	return sv.attrs[i], true
}

// Has reports whether the named attribute is declared on this version.
func (sv *SchemaVersion) Has(name string) bool {
	_, ok := sv.index[name]
	return ok
}

// UpgradeSources returns the source versions of the owned upgrade edges in
// ascending order.
func (sv *SchemaVersion) UpgradeSources() []int {
	out := make([]int, 0, len(sv.upgraders))
	for from := range sv.upgraders {
		out = append(out, from)
	}
	sort.Ints(out)
	return out
}

// DowngradeTargets returns the target versions of the owned downgrade edges
// in ascending order.
func (sv *SchemaVersion) DowngradeTargets() []int {
	out := make([]int, 0, len(sv.downgraders))
	for to := range sv.downgraders {
		out = append(out, to)
	}
	sort.Ints(out)
	return out
}

// patch computes the attribute set of the next version from this one:
// inherited attributes keep their positions, overrides replace in place,
// removals drop, and new attributes append in declaration order.
func patchAttributes(prev []Attribute, def VersionDef) ([]Attribute, error) {
	attrs := make([]Attribute, len(prev))
	copy(attrs, prev)

	index := make(map[string]int, len(attrs))
	for i, a := range attrs {
		index[a.Name] = i
	}

	for _, name := range def.Remove {
		i, ok := index[name]
		if !ok {
			return nil, wrapName(ErrUnknownAttribute, name)
		}
		attrs = append(attrs[:i], attrs[i+1:]...)
		delete(index, name)
		for n, j := range index {
			if j > i {
				index[n] = j - 1
			}
		}
	}

	seen := make(map[string]bool, len(def.Attributes))
	for _, a := range def.Attributes {
		if a.Name == "" {
			return nil, wrapMsg(ErrInvalidAttribute, "empty name")
		}
		if seen[a.Name] {
			return nil, wrapName(ErrDuplicateAttribute, a.Name)
		}
		seen[a.Name] = true

		if i, ok := index[a.Name]; ok {
			attrs[i] = a
			continue
		}
		index[a.Name] = len(attrs)
		attrs = append(attrs, a)
	}

	return attrs, nil
}
