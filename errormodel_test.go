package jsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatterValidReport(t *testing.T) {
	f := &ErrorFormatter{}
	rep := f.Format(nil)
	assert.True(t, rep.Valid)
	assert.Empty(t, rep.Details)
}

func TestErrorFormatterGroupsByPath(t *testing.T) {
	f := &ErrorFormatter{}
	errs := []*Error{
		{Kind: KindType, DataPath: []any{"a"}, EvalPath: []any{"a"}, SchemaPath: []any{"properties", "a"}},
		{Kind: KindMinLength, DataPath: []any{"a"}, EvalPath: []any{"a"}, SchemaPath: []any{"properties", "a"}},
		{Kind: KindRequired, DataPath: nil, EvalPath: nil, SchemaPath: nil, Args: map[string]any{"property": "b"}},
	}
	rep := f.Format(errs)
	require.False(t, rep.Valid)
	require.Len(t, rep.Details, 2)

	var rootDetail, aDetail *ErrorDetail
	for _, d := range rep.Details {
		if d.InstanceLocation == "#" {
			rootDetail = d
		} else {
			aDetail = d
		}
	}
	require.NotNil(t, rootDetail)
	require.NotNil(t, aDetail)
	assert.Len(t, aDetail.Errors, 2)
	assert.Equal(t, "#/a", aDetail.InstanceLocation)
}

func TestErrorFormatterSortOrder(t *testing.T) {
	errs := []*Error{
		{Kind: KindType, DataPath: []any{"b"}},
		{Kind: KindType, DataPath: []any{"a"}},
	}
	asc := (&ErrorFormatter{}).Format(errs)
	assert.Equal(t, "#/a", asc.Details[0].InstanceLocation)

	desc := (&ErrorFormatter{SortDescending: true}).Format(errs)
	assert.Equal(t, "#/b", desc.Details[0].InstanceLocation)
}

func TestDefaultMessageForUnknownKindFallsBackToKind(t *testing.T) {
	assert.Equal(t, "some_unregistered_kind", defaultMessageFor("some_unregistered_kind", nil))
}

func TestFormatErrorFallsBackToKindWhenNoDefaultMessageRegistered(t *testing.T) {
	// defaultMessages only seeds boolean_schema/ref_mismatch/dynamic_ref_mismatch;
	// every other kind relies on its own locale entry (or falls back to the
	// bare kind string) rather than a second hardcoded template here.
	msg := ValidationVocabulary{}.FormatError(KindRequired, map[string]any{"property": "name"}, nil)
	assert.Equal(t, KindRequired, msg)
}
