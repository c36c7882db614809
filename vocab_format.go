package jsv

// FormatVocabulary implements the format keyword. Two IRIs share this type:
// format-annotation (Assert: false — format is recorded but never rejects)
// and format-assertion (Assert: true — a value that fails a recognized
// format's check fails validation; unrecognized format names pass),
// matching the 2020-12 split; the synthetic Draft 7
// dialect also wires the annotation variant by default, so format never
// rejects unless BuildOptions.AssertFormat opts into the assertion variant.
type FormatVocabulary struct {
	Assert  bool
	Formats FormatValidator
}

const formatPriority = 1

// Priority implements Vocabulary.
func (v FormatVocabulary) Priority() int { return formatPriority }

type formatState struct {
	format string
}

// InitState implements Vocabulary.
func (FormatVocabulary) InitState(*BuildOptions) any {
	return &formatState{}
}

// HandleKeyword implements Vocabulary.
func (v FormatVocabulary) HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error) {
	if kw != "format" {
		return nil, false, nil
	}
	s := state.(*formatState)
	str, ok := value.(string)
	if !ok {
		return nil, false, NewBuildError(ReasonInvalidSubSchema, "format", nil)
	}
	s.format = str
	if b.Options().Cast && v.Formats != nil {
		format := str
		fv := v.Formats
		b.RegisterCast(func(data any) (any, error) {
			if !fv.AppliesToType(format, data) {
				return data, nil
			}
			return fv.ValidateCast(format, data)
		})
	}
	return s, true, nil
}

// FinalizeValidators implements Vocabulary.
func (FormatVocabulary) FinalizeValidators(state any) (any, bool, error) {
	s := state.(*formatState)
	if s.format == "" {
		return nil, false, nil
	}
	return s, true, nil
}

// Validate implements Vocabulary.
func (v FormatVocabulary) Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext) {
	s := state.(*formatState)
	if !v.Assert || v.Formats == nil {
		return data, ctx
	}
	if !v.Formats.AppliesToType(s.format, data) {
		return data, ctx
	}
	if _, err := v.Formats.ValidateCast(s.format, data); err != nil {
		ctx.addError(KindFormat, data, map[string]any{"format": s.format}, v)
	}
	return data, ctx
}

// FormatError implements Vocabulary.
func (v FormatVocabulary) FormatError(kind string, args map[string]any, data any) string {
	return defaultMessageFor(kind, args)
}
