package vers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthrough is a transform that returns its input unchanged.
func passthrough(state State) (State, error) {
	return state, nil
}

func TestNewChainValidation(t *testing.T) {
	tests := []struct {
		name    string
		defs    []VersionDef
		wantErr error
	}{
		{
			name:    "empty chain rejected",
			defs:    nil,
			wantErr: ErrEmptyChain,
		},
		{
			name: "single version accepted",
			defs: []VersionDef{
				{Attributes: []Attribute{{Name: "a"}}},
			},
		},
		{
			name: "attribute with empty name rejected",
			defs: []VersionDef{
				{Attributes: []Attribute{{Name: ""}}},
			},
			wantErr: ErrInvalidAttribute,
		},
		{
			name: "duplicate attribute within version rejected",
			defs: []VersionDef{
				{Attributes: []Attribute{{Name: "a"}, {Name: "a"}}},
			},
			wantErr: ErrDuplicateAttribute,
		},
		{
			name: "removing unknown attribute rejected",
			defs: []VersionDef{
				{Attributes: []Attribute{{Name: "a"}}},
				{Remove: []string{"nope"}, Upgraders: []Upgrader{{Fn: passthrough}}},
			},
			wantErr: ErrUnknownAttribute,
		},
		{
			name: "upgrader on version 1 rejected",
			defs: []VersionDef{
				{Upgraders: []Upgrader{{Fn: passthrough}}},
			},
			wantErr: ErrInvalidUpgrader,
		},
		{
			name: "version 2 without upgrader rejected",
			defs: []VersionDef{
				{Attributes: []Attribute{{Name: "a"}}},
				{},
			},
			wantErr: ErrMissingUpgrader,
		},
		{
			name: "shortcut alone does not satisfy default upgrader",
			defs: []VersionDef{
				{Attributes: []Attribute{{Name: "a"}}},
				{Upgraders: []Upgrader{{Fn: passthrough}}},
				{Upgraders: []Upgrader{{From: 1, Fn: passthrough}}},
			},
			wantErr: ErrMissingUpgrader,
		},
		{
			name: "upgrader from future version rejected",
			defs: []VersionDef{
				{},
				{Upgraders: []Upgrader{{Fn: passthrough}, {From: 2, Fn: passthrough}}},
			},
			wantErr: ErrInvalidUpgrader,
		},
		{
			name: "duplicate upgrader source rejected",
			defs: []VersionDef{
				{},
				{Upgraders: []Upgrader{{Fn: passthrough}, {From: 1, Fn: passthrough}}},
			},
			wantErr: ErrDuplicateUpgrader,
		},
		{
			name: "nil upgrade transform rejected",
			defs: []VersionDef{
				{},
				{Upgraders: []Upgrader{{Fn: nil}}},
			},
			wantErr: ErrNilTransform,
		},
		{
			name: "downgrader on version 1 rejected",
			defs: []VersionDef{
				{Downgraders: []Downgrader{{To: 1, Fn: passthrough}}},
			},
			wantErr: ErrInvalidDowngrader,
		},
		{
			name: "downgrader to same or newer version rejected",
			defs: []VersionDef{
				{},
				{
					Upgraders:   []Upgrader{{Fn: passthrough}},
					Downgraders: []Downgrader{{To: 2, Fn: passthrough}},
				},
			},
			wantErr: ErrInvalidDowngrader,
		},
		{
			name: "duplicate downgrader target rejected",
			defs: []VersionDef{
				{},
				{
					Upgraders: []Upgrader{{Fn: passthrough}},
					Downgraders: []Downgrader{
						{To: 1, Fn: passthrough},
						{To: 1, Fn: passthrough},
					},
				},
			},
			wantErr: ErrDuplicateDowngrader,
		},
		{
			name: "nil downgrade transform rejected",
			defs: []VersionDef{
				{},
				{
					Upgraders:   []Upgrader{{Fn: passthrough}},
					Downgraders: []Downgrader{{To: 1, Fn: nil}},
				},
			},
			wantErr: ErrNilTransform,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := NewChain(tt.defs...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, chain)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, chain)
			}
		})
	}
}

func TestChainAttributeInheritance(t *testing.T) {
	chain, err := NewChain(
		VersionDef{Attributes: []Attribute{
			{Name: "name", Required: true},
			{Name: "email", Required: true},
			{Name: "tags", Default: []string{}},
		}},
		VersionDef{
			Attributes: []Attribute{
				{Name: "email", Default: "unknown"}, // override: now optional
				{Name: "phone", Default: ""},
			},
			Remove:    []string{"tags"},
			Upgraders: []Upgrader{{Fn: passthrough}},
		},
	)
	require.NoError(t, err)
	require.Equal(t, 2, chain.Latest())

	v1, ok := chain.Version(1)
	require.True(t, ok)
	names := func(attrs []Attribute) []string {
		out := make([]string, len(attrs))
		for i, a := range attrs {
			out[i] = a.Name
		}
		return out
	}
	assert.Equal(t, []string{"name", "email", "tags"}, names(v1.Attributes()))

	v2, ok := chain.Version(2)
	require.True(t, ok)
	// Inherited attributes keep their positions; overrides replace in
	// place; removed attributes are gone; new ones append.
	assert.Equal(t, []string{"name", "email", "phone"}, names(v2.Attributes()))

	email, ok := v2.Attribute("email")
	require.True(t, ok)
	assert.False(t, email.Required, "override should replace the inherited spec")
	assert.Equal(t, "unknown", email.Default)

	assert.False(t, v2.Has("tags"))
	assert.True(t, v1.Has("tags"), "removal must not leak into the older version")

	// Version 1's inherited copy is untouched by the version 2 override.
	v1email, ok := v1.Attribute("email")
	require.True(t, ok)
	assert.True(t, v1email.Required)
}

func TestChainVersionLookup(t *testing.T) {
	chain, err := NewChain(
		VersionDef{},
		VersionDef{Upgraders: []Upgrader{{Fn: passthrough}}},
	)
	require.NoError(t, err)

	for _, n := range []int{0, -1, 3} {
		_, ok := chain.Version(n)
		assert.False(t, ok, "version %d should not resolve", n)
	}
	sv, ok := chain.Version(2)
	require.True(t, ok)
	assert.Equal(t, 2, sv.Version())
}

func TestSchemaVersionEdgeIntrospection(t *testing.T) {
	chain, err := NewChain(
		VersionDef{},
		VersionDef{Upgraders: []Upgrader{{Fn: passthrough}}},
		VersionDef{
			Upgraders: []Upgrader{
				{Fn: passthrough},
				{From: 1, Fn: passthrough},
			},
			Downgraders: []Downgrader{
				{To: 2, Fn: passthrough},
				{To: 1, Fn: passthrough},
			},
		},
	)
	require.NoError(t, err)

	v3, ok := chain.Version(3)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2}, v3.UpgradeSources())
	assert.Equal(t, []int{1, 2}, v3.DowngradeTargets())

	v2, ok := chain.Version(2)
	require.True(t, ok)
	assert.Equal(t, []int{1}, v2.UpgradeSources())
	assert.Empty(t, v2.DowngradeTargets())
}
