package jsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveNamespace(t *testing.T) {
	tests := []struct {
		name     string
		base     Namespace
		rel      string
		expected Namespace
		wantErr  bool
	}{
		{"absolute replaces base", "http://example.com/a.json", "http://other.com/b.json", "http://other.com/b.json", false},
		{"relative merges onto hierarchical base", "http://example.com/dir/a.json", "b.json", "http://example.com/dir/b.json", false},
		{"pure fragment preserves base", "http://example.com/a.json", "#/defs/foo", "http://example.com/a.json", false},
		{"pure fragment on root preserves root", RootNS, "#/defs/foo", RootNS, false},
		{"relative non-fragment onto root is an error", RootNS, "other.json", RootNS, true},
		{"empty relative preserves base", "http://example.com/a.json", "", "http://example.com/a.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := deriveNamespace(tt.base, tt.rel)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNamespaceIsRoot(t *testing.T) {
	assert.True(t, RootNS.IsRoot())
	assert.False(t, Namespace("http://example.com").IsRoot())
}

func TestStripFragment(t *testing.T) {
	assert.Equal(t, "http://example.com/a.json", stripFragment("http://example.com/a.json#/foo"))
	assert.Equal(t, "http://example.com/a.json", stripFragment("http://example.com/a.json"))
}
