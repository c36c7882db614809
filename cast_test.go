package jsv

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCastCtx() *ValidationContext {
	return newRootContext(map[Key]CompiledValidator{}, RootNS, &ValidateOptions{Cast: true})
}

func TestPushPopCastAppliesOutermost(t *testing.T) {
	ctx := newCastCtx()

	toInt := &castDescriptor{fn: func(v any) (any, error) {
		s := v.(string)
		n, err := strconv.Atoi(s)
		return n, err
	}}

	pushCast(ctx, toInt)
	pushCast(ctx, nil) // nested subschema with no cast of its own

	out, err := popCast(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "42", out) // inner pop: depth != 0, no cast applied yet

	out, err = popCast(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestPushCastShadowsInnerRegistration(t *testing.T) {
	ctx := newCastCtx()

	outer := &castDescriptor{fn: func(v any) (any, error) { return "outer", nil }}
	inner := &castDescriptor{fn: func(v any) (any, error) { return "inner", nil }}

	pushCast(ctx, outer)
	pushCast(ctx, inner) // shadowed: outer already claimed this data path

	_, _ = popCast(ctx, "x") // inner pop, no-op
	out, err := popCast(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "outer", out)
}

func TestPushPopCastNoOpWhenCastDisabled(t *testing.T) {
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, &ValidateOptions{Cast: false})
	pushCast(ctx, &castDescriptor{fn: func(v any) (any, error) { return "changed", nil }})
	out, err := popCast(ctx, "original")
	require.NoError(t, err)
	assert.Equal(t, "original", out)
	assert.Empty(t, ctx.CastStacks)
}

func TestMergeTrackedCastsPrefersOuterAdoptsInnerWhenOuterEmpty(t *testing.T) {
	outer := map[string][]castStackEntry{
		"#/a": {{depth: 0, cast: nil}},
	}
	inner := map[string][]castStackEntry{
		"#/a": {{depth: 0, cast: func(v any) (any, error) { return v, nil }}},
		"#/b": {{depth: 0, cast: nil}},
	}
	merged := mergeTrackedCasts(outer, inner)
	assert.NotNil(t, merged["#/a"][0].cast)
	assert.Contains(t, merged, "#/b")
}

func TestDataPathKey(t *testing.T) {
	assert.Equal(t, "#/a/0", dataPathKey([]any{"a", 0}))
	assert.Equal(t, "#", dataPathKey(nil))
}
