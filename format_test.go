package jsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFormatValidatorEmail(t *testing.T) {
	fv := DefaultFormatValidator()
	assert.True(t, fv.AppliesToType("email", "a@b.com"))
	assert.False(t, fv.AppliesToType("email", 5))

	_, err := fv.ValidateCast("email", "not-an-email")
	assert.ErrorIs(t, err, ErrFormatMismatch)

	out, err := fv.ValidateCast("email", "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", out)
}

func TestDefaultFormatValidatorUnknownFormatPassesThrough(t *testing.T) {
	fv := DefaultFormatValidator()
	// AppliesToType only checks the instance's Go type; ValidateCast treats
	// an unregistered format name as always-matching.
	assert.True(t, fv.AppliesToType("not-a-real-format", "anything"))
	out, err := fv.ValidateCast("not-a-real-format", "anything")
	require.NoError(t, err)
	assert.Equal(t, "anything", out)
}

type stubFormatValidator struct {
	formats []string
}

func (s stubFormatValidator) SupportedFormats() []string { return s.formats }
func (s stubFormatValidator) AppliesToType(format string, data any) bool {
	_, ok := data.(string)
	return ok
}
func (s stubFormatValidator) ValidateCast(format string, data any) (any, error) {
	return data, nil
}

func TestFormatValidatorChainPrefersEarlierRegistration(t *testing.T) {
	first := stubFormatValidator{formats: []string{"custom"}}
	chain := NewFormatValidatorChain(first, DefaultFormatValidator())

	assert.True(t, chain.AppliesToType("custom", "x"))
	assert.True(t, chain.AppliesToType("email", "a@b.com"))

	out, err := chain.ValidateCast("custom", "anything-goes")
	require.NoError(t, err)
	assert.Equal(t, "anything-goes", out)
}
