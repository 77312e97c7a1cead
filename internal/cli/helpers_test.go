package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "plain strings",
			pairs: []string{"name=Ada", "email=ada@example.org"},
			want:  map[string]any{"name": "Ada", "email": "ada@example.org"},
		},
		{
			name:  "JSON values decoded",
			pairs: []string{"priority=3", "active=true", `contacts={"email":"a@b.c"}`},
			want: map[string]any{
				"priority": float64(3),
				"active":   true,
				"contacts": map[string]any{"email": "a@b.c"},
			},
		},
		{
			name:  "value containing equals sign",
			pairs: []string{"note=a=b"},
			want:  map[string]any{"note": "a=b"},
		},
		{
			name:    "missing separator",
			pairs:   []string{"name"},
			wantErr: true,
		},
		{
			name:    "empty key",
			pairs:   []string{"=value"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFields(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
