package jsv

// UnevaluatedVocabulary implements unevaluatedProperties and
// unevaluatedItems. It is a 2020-12-only vocabulary: the synthetic Draft 7
// dialect never registers it (defaultVocabularies in vocabulary.go). It runs
// after every other applicator so the evaluated-tracking accumulated by
// properties/patternProperties/items/prefixItems/allOf/anyOf/oneOf/$ref is
// complete by the time it inspects ctx's evaluated frame.
type UnevaluatedVocabulary struct{}

const unevaluatedPriority = 100

// Priority implements Vocabulary.
func (UnevaluatedVocabulary) Priority() int { return unevaluatedPriority }

type unevaluatedState struct {
	properties    CompiledValidator
	hasProperties bool
	items         CompiledValidator
	hasItems      bool
}

// InitState implements Vocabulary.
func (UnevaluatedVocabulary) InitState(*BuildOptions) any {
	return &unevaluatedState{}
}

// HandleKeyword implements Vocabulary.
func (UnevaluatedVocabulary) HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error) {
	s := state.(*unevaluatedState)
	switch kw {
	case "unevaluatedProperties":
		v, err := b.BuildSub(value, []any{"unevaluatedProperties"})
		if err != nil {
			return nil, false, err
		}
		s.properties = v
		s.hasProperties = true
		return s, true, nil
	case "unevaluatedItems":
		v, err := b.BuildSub(value, []any{"unevaluatedItems"})
		if err != nil {
			return nil, false, err
		}
		s.items = v
		s.hasItems = true
		return s, true, nil
	default:
		return nil, false, nil
	}
}

// FinalizeValidators implements Vocabulary.
func (UnevaluatedVocabulary) FinalizeValidators(state any) (any, bool, error) {
	s := state.(*unevaluatedState)
	if !s.hasProperties && !s.hasItems {
		return nil, false, nil
	}
	return s, true, nil
}

// Validate implements Vocabulary.
func (UnevaluatedVocabulary) Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext) {
	s := state.(*unevaluatedState)
	frame := ctx.currentFrame()

	if s.hasProperties {
		if obj, ok := data.(map[string]any); ok {
			for name, val := range obj {
				if frame.properties[name] {
					continue
				}
				if bc, ok := s.properties.(*BooleanSchema); ok && !bc.Valid {
					ctx.addError(KindUnevaluatedProperties, data, map[string]any{"property": name}, UnevaluatedVocabulary{})
					continue
				}
				_, ctx = ValidateIn(val, name, name, s.properties, ctx)
			}
		}
	}

	if s.hasItems {
		if arr, ok := data.([]any); ok {
			for i, val := range arr {
				if frame.indices[i] {
					continue
				}
				if bc, ok := s.items.(*BooleanSchema); ok && !bc.Valid {
					ctx.addError(KindUnevaluatedItems, data, map[string]any{"index": i}, UnevaluatedVocabulary{})
					continue
				}
				_, ctx = ValidateIn(val, i, i, s.items, ctx)
			}
		}
	}

	return data, ctx
}

// FormatError implements Vocabulary.
func (UnevaluatedVocabulary) FormatError(kind string, args map[string]any, data any) string {
	return defaultMessageFor(kind, args)
}
