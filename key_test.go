package jsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	ns := Namespace("http://example.com/schema.json")

	ptr := PointerKey(ns, []any{"properties", "name"})
	assert.True(t, ptr.IsPointer())
	assert.Equal(t, ns, ptr.Namespace())
	assert.Equal(t, []any{"properties", "name"}, ptr.Segments())

	anc := AnchorKey(ns, "foo")
	assert.True(t, anc.IsAnchor())
	assert.Equal(t, "foo", anc.Name())

	dyn := DynamicAnchorKey(ns, "bar")
	assert.True(t, dyn.IsDynamicAnchor())
	assert.Equal(t, "bar", dyn.Name())

	root := NSKey(ns)
	assert.True(t, root.IsNamespaceRoot())

	// Distinct kinds never collide even with identical (ns, name) inputs.
	assert.NotEqual(t, string(anc), string(dyn))
}

func TestKeyFromRef(t *testing.T) {
	ns := Namespace("http://example.com/schema.json")

	ptrRef := Ref{NS: ns, Kind: RefPointer, Segs: []any{"a", 0}}
	assert.Equal(t, PointerKey(ns, []any{"a", 0}), keyFromRef(ptrRef))

	ancRef := Ref{NS: ns, Kind: RefAnchor, Name: "x"}
	assert.Equal(t, AnchorKey(ns, "x"), keyFromRef(ancRef))

	dynRef := Ref{NS: ns, Kind: RefAnchor, Name: "x", Dynamic: true}
	assert.Equal(t, DynamicAnchorKey(ns, "x"), keyFromRef(dynRef))

	topRef := Ref{NS: ns, Kind: RefTop}
	assert.Equal(t, NSKey(ns), keyFromRef(topRef))
}

func TestParseRef(t *testing.T) {
	base := Namespace("http://example.com/schema.json")

	ref, err := parseRef(base, "#/properties/name", false)
	require.NoError(t, err)
	assert.Equal(t, RefPointer, ref.Kind)
	assert.Equal(t, []any{"properties", "name"}, ref.Segs)
	assert.Equal(t, base, ref.NS)

	ref, err = parseRef(base, "#anchorName", false)
	require.NoError(t, err)
	assert.Equal(t, RefAnchor, ref.Kind)
	assert.Equal(t, "anchorName", ref.Name)
	assert.False(t, ref.Dynamic)

	ref, err = parseRef(base, "#anchorName", true)
	require.NoError(t, err)
	assert.True(t, ref.Dynamic)

	ref, err = parseRef(base, "other.json", false)
	require.NoError(t, err)
	assert.Equal(t, Namespace("http://example.com/other.json"), ref.NS)
	assert.Equal(t, RefTop, ref.Kind)
}

func TestPointerSegmentsRoundTrip(t *testing.T) {
	segs, err := parsePointerSegments("/a~1b/c~0d/0")
	require.NoError(t, err)
	assert.Equal(t, []any{"a/b", "c~d", 0}, segs)

	assert.Equal(t, "#/a~1b/c~0d/0", formatPointerSegments(segs))
}

func TestIsCanonicalInt(t *testing.T) {
	assert.True(t, isCanonicalInt("0", 0))
	assert.True(t, isCanonicalInt("12", 12))
	assert.False(t, isCanonicalInt("01", 1))
	assert.False(t, isCanonicalInt("-1", -1))
}
