package jsv

// CoreVocabulary implements $ref, $dynamicRef, $id, $anchor, $dynamicAnchor,
// and $defs/definitions for both dialects. $id/$anchor/$dynamicAnchor are
// claimed purely as annotations here: the Resolver's scan pass (resolver.go)
// already used them to populate the alias cache before compilation began.
type CoreVocabulary struct{}

const corePriority = 0

// Priority implements Vocabulary: Core runs before the Format, Applicator,
// Validation and Unevaluated modules, so $ref is dereferenced before
// applicators see the value.
func (CoreVocabulary) Priority() int { return corePriority }

type coreState struct {
	ref           *Ref
	refKey        Key
	dynamicRef    *Ref
	dynamicRefKey Key
}

// InitState implements Vocabulary.
func (CoreVocabulary) InitState(*BuildOptions) any {
	return &coreState{}
}

// HandleKeyword implements Vocabulary.
func (CoreVocabulary) HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error) {
	s := state.(*coreState)
	switch kw {
	case "$ref":
		str, ok := value.(string)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "$ref", nil)
		}
		ref, err := parseRef(b.CurrentNamespace(), str, false)
		if err != nil {
			return nil, false, err
		}
		key, err := b.StageRef(ref)
		if err != nil {
			return nil, false, err
		}
		s.ref = &ref
		s.refKey = key
		return s, true, nil
	case "$dynamicRef":
		str, ok := value.(string)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "$dynamicRef", nil)
		}
		ref, err := parseRef(b.CurrentNamespace(), str, true)
		if err != nil {
			return nil, false, err
		}
		key, err := b.StageRef(ref)
		if err != nil {
			return nil, false, err
		}
		s.dynamicRef = &ref
		s.dynamicRefKey = key
		return s, true, nil
	case "$id", "$anchor", "$dynamicAnchor", "$defs", "definitions", "$schema", "$vocabulary", "$comment":
		return s, true, nil
	default:
		return nil, false, nil
	}
}

// FinalizeValidators implements Vocabulary.
func (CoreVocabulary) FinalizeValidators(state any) (any, bool, error) {
	s := state.(*coreState)
	if s.ref == nil && s.dynamicRef == nil {
		return nil, false, nil
	}
	return s, true, nil
}

// Validate implements Vocabulary.
func (CoreVocabulary) Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext) {
	s := state.(*coreState)
	value := data
	if s.ref != nil {
		value, ctx = ValidateRef(value, s.refKey, "$ref", ctx)
	}
	if s.dynamicRef != nil {
		value, ctx = ValidateRef(value, s.dynamicRefKey, "$dynamicRef", ctx)
	}
	return value, ctx
}

// FormatError implements Vocabulary.
func (CoreVocabulary) FormatError(kind string, args map[string]any, data any) string {
	return defaultMessageFor(kind, args)
}

// draft7CoreVocabulary is CoreVocabulary with Draft 7's "siblings ignored
// when $ref is present" behaviour, applied by compileOne (builder.go) via
// isSiblingIgnoreDialect rather than here: the filtering needs visibility
// into the full fold result, which a single module cannot see from inside
// HandleKeyword/FinalizeValidators.
type draft7CoreVocabulary struct {
	*CoreVocabulary
}
