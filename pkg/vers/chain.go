package vers

// Chain is the complete ordered set of schema versions for one versioned
// type, numbered densely 1..N. A Chain is immutable once built and may be
// shared and read concurrently without synchronization.
type Chain struct {
	versions []*SchemaVersion
}

// NewChain assembles and validates a chain from positional version
// definitions: defs[0] is version 1, defs[1] version 2, and so on.
//
// All declaration errors are detected here: duplicate attribute names,
// upgrade edges with out-of-range or duplicate source versions, a version
// greater than 1 missing its upgrader from the previous version, and
// downgrade edges with out-of-range or duplicate targets.
func NewChain(defs ...VersionDef) (*Chain, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyChain
	}

	chain := &Chain{versions: make([]*SchemaVersion, 0, len(defs))}
	var prev []Attribute

	for i, def := range defs {
		version := i + 1

		attrs, err := patchAttributes(prev, def)
		if err != nil {
			return nil, wrapMsg(err, "version %d", version)
		}

		sv := &SchemaVersion{
			version:     version,
			attrs:       attrs,
			index:       make(map[string]int, len(attrs)),
			upgraders:   make(map[int]TransformFunc, len(def.Upgraders)),
			downgraders: make(map[int]TransformFunc, len(def.Downgraders)),
		}
		for j, a := range attrs {
			sv.index[a.Name] = j
		}

		if err := registerUpgraders(sv, def.Upgraders); err != nil {
			return nil, err
		}
		if err := registerDowngraders(sv, def.Downgraders); err != nil {
			return nil, err
		}

		chain.versions = append(chain.versions, sv)
		prev = attrs
	}

	return chain, nil
}

// registerUpgraders installs upgrade edges on sv. A zero source defaults to
// the immediately preceding version. Every version after the first must end
// up owning an edge from its predecessor.
func registerUpgraders(sv *SchemaVersion, ups []Upgrader) error {
	for _, up := range ups {
		if sv.version == 1 {
			return wrapMsg(ErrInvalidUpgrader, "version 1 cannot own upgrade edges")
		}
		if up.Fn == nil {
			return wrapMsg(ErrNilTransform, "upgrader on version %d", sv.version)
		}
		from := up.From
		if from == 0 {
			from = sv.version - 1
		}
		if from < 1 || from >= sv.version {
			return wrapMsg(ErrInvalidUpgrader, "version %d cannot upgrade from version %d", sv.version, from)
		}
		if _, dup := sv.upgraders[from]; dup {
			return wrapMsg(ErrDuplicateUpgrader, "version %d already upgrades from version %d", sv.version, from)
		}
		sv.upgraders[from] = up.Fn
	}

	if sv.version > 1 {
		if _, ok := sv.upgraders[sv.version-1]; !ok {
			return wrapMsg(ErrMissingUpgrader, "version %d requires an upgrader from version %d", sv.version, sv.version-1)
		}
	}
	return nil
}

// registerDowngraders installs downgrade edges on sv.
func registerDowngraders(sv *SchemaVersion, downs []Downgrader) error {
	for _, down := range downs {
		if sv.version == 1 {
			return wrapMsg(ErrInvalidDowngrader, "version 1 cannot own downgrade edges")
		}
		if down.Fn == nil {
			return wrapMsg(ErrNilTransform, "downgrader on version %d", sv.version)
		}
		if down.To < 1 || down.To >= sv.version {
			return wrapMsg(ErrInvalidDowngrader, "version %d cannot downgrade to version %d", sv.version, down.To)
		}
		if _, dup := sv.downgraders[down.To]; dup {
			return wrapMsg(ErrDuplicateDowngrader, "version %d already downgrades to version %d", sv.version, down.To)
		}
		sv.downgraders[down.To] = down.Fn
	}
	return nil
}

// Latest returns the highest version number in the chain.
func (c *Chain) Latest() int {
	return len(c.versions)
}

// Version returns the schema for the given version number and whether it is
// present in the chain.
func (c *Chain) Version(n int) (*SchemaVersion, bool) {
	if n < 1 || n > len(c.versions) {
		return nil, false
	}
	return c.versions[n-1], true
}

// latest returns the schema of the highest version.
func (c *Chain) latest() *SchemaVersion {
	return c.versions[len(c.versions)-1]
}
