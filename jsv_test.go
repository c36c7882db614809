package jsv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndValidateInstanceBasicObject(t *testing.T) {
	schema := map[string]any{
		"$schema":   Draft202012,
		"type":      "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
			"age":  map[string]any{"type": "integer", "minimum": float64(0)},
		},
		"required": []any{"name"},
	}
	s, err := Compile(context.Background(), schema, nil)
	require.NoError(t, err)

	rep := s.ValidateInstance(map[string]any{"name": "alice", "age": float64(30)})
	assert.True(t, rep.Valid)

	rep2 := s.ValidateInstance(map[string]any{"age": float64(-1)})
	assert.False(t, rep2.Valid)
	require.NotEmpty(t, rep2.Details)

	var sawRequired, sawMinimum bool
	for _, d := range rep2.Details {
		for _, e := range d.Errors {
			if e.Kind == KindRequired {
				sawRequired = true
			}
			if e.Kind == KindMinimum {
				sawMinimum = true
			}
		}
	}
	assert.True(t, sawRequired)
	assert.True(t, sawMinimum)
}

func TestCompileRootBooleanSchemaTrueAcceptsEverything(t *testing.T) {
	s, err := Compile(context.Background(), true, nil)
	require.NoError(t, err)
	rep := s.ValidateInstance(map[string]any{"whatever": float64(1)})
	assert.True(t, rep.Valid)
}

func TestCompileRootBooleanSchemaFalseRejectsEverything(t *testing.T) {
	s, err := Compile(context.Background(), false, nil)
	require.NoError(t, err)
	rep := s.ValidateInstance("anything")
	assert.False(t, rep.Valid)
	require.Len(t, rep.Details, 1)
	assert.Equal(t, KindBooleanSchema, rep.Details[0].Errors[0].Kind)
}

func TestCompileExternalRefViaDocuments(t *testing.T) {
	root := map[string]any{
		"$schema": Draft202012,
		"type":    "object",
		"properties": map[string]any{
			"id": map[string]any{"$ref": "https://example.com/id.json"},
		},
	}
	idSchema := map[string]any{
		"$schema":   Draft202012,
		"type":      "string",
		"minLength": float64(3),
	}
	s, err := Compile(context.Background(), root, &CompileOptions{
		Documents: map[string]any{"https://example.com/id.json": idSchema},
	})
	require.NoError(t, err)

	rep := s.ValidateInstance(map[string]any{"id": "abcd"})
	assert.True(t, rep.Valid)

	rep2 := s.ValidateInstance(map[string]any{"id": "ab"})
	assert.False(t, rep2.Valid)
}

func TestCompileOneOfExclusivity(t *testing.T) {
	schema := map[string]any{
		"$schema": Draft202012,
		"oneOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "number"},
		},
	}
	s, err := Compile(context.Background(), schema, nil)
	require.NoError(t, err)

	rep := s.ValidateInstance("a string")
	assert.True(t, rep.Valid)

	rep2 := s.ValidateInstance(true)
	assert.False(t, rep2.Valid)
	require.Len(t, rep2.Details, 1)
	assert.Equal(t, KindOneOfNone, rep2.Details[0].Errors[0].Kind)
}

func TestCompileOneOfMultipleMatchesRejected(t *testing.T) {
	schema := map[string]any{
		"$schema": Draft202012,
		"oneOf": []any{
			map[string]any{"type": "number"},
			map[string]any{"multipleOf": float64(1)},
		},
	}
	s, err := Compile(context.Background(), schema, nil)
	require.NoError(t, err)

	rep := s.ValidateInstance(float64(4))
	assert.False(t, rep.Valid)
	require.Len(t, rep.Details, 1)
	assert.Equal(t, KindOneOfMulti, rep.Details[0].Errors[0].Kind)
}

// csvFormatValidator casts a "csv" formatted string into []string, exercising
// the deferred-cast side channel end to end through Compile/ValidateInstanceCast.
type csvFormatValidator struct{}

func (csvFormatValidator) SupportedFormats() []string { return []string{"csv"} }
func (csvFormatValidator) AppliesToType(format string, data any) bool {
	_, ok := data.(string)
	return ok
}
func (csvFormatValidator) ValidateCast(format string, data any) (any, error) {
	s := data.(string)
	var out []any
	cur := ""
	for _, r := range s {
		if r == ',' {
			out = append(out, cur)
			cur = ""
			continue
		}
		cur += string(r)
	}
	out = append(out, cur)
	return out, nil
}

func TestValidateInstanceCastAppliesCustomFormat(t *testing.T) {
	schema := map[string]any{
		"$schema": Draft202012,
		"type":    "string",
		"format":  "csv",
	}
	s, err := Compile(context.Background(), schema, &CompileOptions{
		Build: BuildOptions{
			Cast:    true,
			Formats: csvFormatValidator{},
		},
	})
	require.NoError(t, err)

	out, rep := s.ValidateInstanceCast("a,b,c")
	require.True(t, rep.Valid)
	assert.Equal(t, []any{"a", "b", "c"}, out)
}

func TestValidateInstanceReportsNestedInstanceLocation(t *testing.T) {
	schema := map[string]any{
		"$schema": Draft202012,
		"type":    "object",
		"properties": map[string]any{
			"address": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"zip": map[string]any{"type": "string"},
				},
			},
		},
	}
	s, err := Compile(context.Background(), schema, nil)
	require.NoError(t, err)

	rep := s.ValidateInstance(map[string]any{
		"address": map[string]any{"zip": float64(12345)},
	})
	require.False(t, rep.Valid)
	require.Len(t, rep.Details, 1)
	assert.Equal(t, "#/address/zip", rep.Details[0].InstanceLocation)
	assert.Equal(t, "#/properties/address/properties/zip", rep.Details[0].SchemaLocation)
}

func TestValidateInstanceReportsSchemaLocationForAllOfBranch(t *testing.T) {
	schema := map[string]any{
		"$schema": Draft202012,
		"allOf": []any{
			map[string]any{"type": "string"},
		},
	}
	s, err := Compile(context.Background(), schema, nil)
	require.NoError(t, err)

	rep := s.ValidateInstance(float64(1))
	require.False(t, rep.Valid)
	require.Len(t, rep.Details, 1)
	assert.Equal(t, "#", rep.Details[0].InstanceLocation)
	assert.Equal(t, "#/allOf/0", rep.Details[0].SchemaLocation)
}
