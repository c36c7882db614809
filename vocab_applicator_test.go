package jsv

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicatorPropertiesNoDuplicateErrorsOnFailure(t *testing.T) {
	s := &applicatorState{
		properties: map[string]CompiledValidator{
			"age": &BooleanSchema{Valid: false},
		},
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate(map[string]any{"age": float64(1)}, s, ctx)

	require.Len(t, ctx.Errors, 1)
	assert.Equal(t, KindBooleanSchema, ctx.Errors[0].Kind)
	assert.False(t, ctx.currentFrame().properties["age"])
}

func TestApplicatorPropertiesMarksEvaluatedOnlyOnSuccess(t *testing.T) {
	s := &applicatorState{
		properties: map[string]CompiledValidator{
			"ok":  &BooleanSchema{Valid: true},
			"bad": &BooleanSchema{Valid: false},
		},
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate(map[string]any{"ok": 1, "bad": 1}, s, ctx)

	require.Len(t, ctx.Errors, 1)
	assert.True(t, ctx.currentFrame().properties["ok"])
	assert.False(t, ctx.currentFrame().properties["bad"])
}

func TestApplicatorPatternPropertiesAndAdditionalPropertiesNoDuplication(t *testing.T) {
	s := &applicatorState{
		patternProperties: []patternPropEntry{
			{re: regexp.MustCompile(`^x_`), validator: &BooleanSchema{Valid: false}},
		},
		additionalProps:    &BooleanSchema{Valid: false},
		hasAdditionalProps: true,
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate(map[string]any{"x_foo": 1, "other": 1}, s, ctx)

	require.Len(t, ctx.Errors, 2)
	assert.False(t, ctx.currentFrame().properties["x_foo"])
	assert.False(t, ctx.currentFrame().properties["other"])
}

func TestApplicatorAllOfDoesNotPushDataPathSegment(t *testing.T) {
	s := &applicatorState{
		allOf: []CompiledValidator{&BooleanSchema{Valid: false}},
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate("x", s, ctx)

	require.Len(t, ctx.Errors, 1)
	assert.Empty(t, ctx.Errors[0].DataPath)
}

func TestApplicatorAllOfNoDuplicateErrorsAcrossBranches(t *testing.T) {
	s := &applicatorState{
		allOf: []CompiledValidator{
			&BooleanSchema{Valid: false},
			&BooleanSchema{Valid: false},
		},
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate("x", s, ctx)

	assert.Len(t, ctx.Errors, 2)
}

func TestApplicatorThenBranchTakenWhenIfPasses(t *testing.T) {
	s := &applicatorState{
		ifSchema:   &BooleanSchema{Valid: true},
		thenSchema: &BooleanSchema{Valid: false},
		elseSchema: &BooleanSchema{Valid: false},
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate("x", s, ctx)

	require.Len(t, ctx.Errors, 1)
}

func TestApplicatorElseBranchTakenWhenIfFails(t *testing.T) {
	s := &applicatorState{
		ifSchema:   &BooleanSchema{Valid: false},
		thenSchema: &BooleanSchema{Valid: false},
		elseSchema: &BooleanSchema{Valid: false},
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate("x", s, ctx)

	require.Len(t, ctx.Errors, 1)
}

func TestApplicatorDependentSchemasOnlyAppliesWhenPropertyPresent(t *testing.T) {
	s := &applicatorState{
		dependentSchemas: map[string]CompiledValidator{
			"credit_card": &BooleanSchema{Valid: false},
		},
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate(map[string]any{"name": "a"}, s, ctx)
	assert.Empty(t, ctx.Errors)

	ctx2 := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx2 = ApplicatorVocabulary{}.Validate(map[string]any{"credit_card": "1"}, s, ctx2)
	require.Len(t, ctx2.Errors, 1)
}

func TestApplicatorOneOfExactlyOneMatchMergesEvaluated(t *testing.T) {
	matching := &Subschema{
		validators: []validatorEntry{{module: passModule{}, state: nil}},
	}
	s := &applicatorState{
		oneOf: []CompiledValidator{&BooleanSchema{Valid: false}, matching},
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	_, ctx = ApplicatorVocabulary{}.Validate("x", s, ctx)
	assert.Empty(t, ctx.Errors)
}

func TestApplicatorContainsChecksMinAndMax(t *testing.T) {
	min := 2
	s := &applicatorState{
		hasContains: true,
		contains:    &BooleanSchema{Valid: true},
		minContains: &min,
	}
	ctx := newRootContext(map[Key]CompiledValidator{}, RootNS, nil)
	applyArrayKeywords(s, []any{"a"}, ctx)
	require.Len(t, ctx.Errors, 1)
	assert.Equal(t, KindMinContains, ctx.Errors[0].Kind)
}
