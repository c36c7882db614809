package jsv

// MetaDataVocabulary claims the annotation-only keywords that never affect
// validation outcome: title, description, default, examples, deprecated,
// readOnly, writeOnly. They are consumed here purely so the keyword-folding
// loop in compileOne doesn't treat them as unrecognized.
type MetaDataVocabulary struct{}

const metadataPriority = -100

// Priority implements Vocabulary.
func (MetaDataVocabulary) Priority() int { return metadataPriority }

// InitState implements Vocabulary.
func (MetaDataVocabulary) InitState(*BuildOptions) any {
	return nil
}

// HandleKeyword implements Vocabulary.
func (MetaDataVocabulary) HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error) {
	switch kw {
	case "title", "description", "default", "examples", "deprecated", "readOnly", "writeOnly":
		return state, true, nil
	default:
		return nil, false, nil
	}
}

// FinalizeValidators implements Vocabulary.
func (MetaDataVocabulary) FinalizeValidators(state any) (any, bool, error) {
	return nil, false, nil
}

// Validate implements Vocabulary.
func (MetaDataVocabulary) Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext) {
	return data, ctx
}

// FormatError implements Vocabulary.
func (MetaDataVocabulary) FormatError(kind string, args map[string]any, data any) string {
	return defaultMessageFor(kind, args)
}
