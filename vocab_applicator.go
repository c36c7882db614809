package jsv

import "regexp"

// ApplicatorVocabulary implements every keyword that applies a subschema to
// all or part of the instance: properties, patternProperties,
// additionalProperties, propertyNames, items/prefixItems (2020-12) or the
// array-form items/additionalItems (Draft 7), contains, allOf, anyOf, oneOf,
// not, if/then/else and dependentSchemas. Both dialects share one module: the
// Draft 7 "items-as-array" shape and the 2020-12 "prefixItems + items" shape
// are distinguished purely by the JSON shape of the "items" value.
type ApplicatorVocabulary struct{}

const applicatorPriority = 5

// Priority implements Vocabulary.
func (ApplicatorVocabulary) Priority() int { return applicatorPriority }

type applicatorState struct {
	properties        map[string]CompiledValidator
	patternProperties  []patternPropEntry
	additionalProps    CompiledValidator
	hasAdditionalProps bool
	propertyNames      CompiledValidator

	prefixItems     []CompiledValidator
	items           CompiledValidator
	hasItems        bool
	itemsIsArrayForm bool
	additionalItems  CompiledValidator
	hasAdditionalItems bool

	contains    CompiledValidator
	hasContains bool
	minContains *int
	maxContains *int

	allOf []CompiledValidator
	anyOf []CompiledValidator
	oneOf []CompiledValidator
	not   CompiledValidator

	ifSchema   CompiledValidator
	thenSchema CompiledValidator
	elseSchema CompiledValidator

	dependentSchemas map[string]CompiledValidator
}

type patternPropEntry struct {
	re        *regexp.Regexp
	validator CompiledValidator
}

// InitState implements Vocabulary.
func (ApplicatorVocabulary) InitState(*BuildOptions) any {
	return &applicatorState{}
}

// HandleKeyword implements Vocabulary.
func (ApplicatorVocabulary) HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error) {
	s := state.(*applicatorState)
	switch kw {
	case "properties":
		m, ok := value.(map[string]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "properties", nil)
		}
		s.properties = map[string]CompiledValidator{}
		for name, sub := range m {
			v, err := b.BuildSub(sub, []any{"properties", name})
			if err != nil {
				return nil, false, err
			}
			s.properties[name] = v
		}
		return s, true, nil
	case "patternProperties":
		m, ok := value.(map[string]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "patternProperties", nil)
		}
		for pattern, sub := range m {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, false, NewBuildError(ReasonInvalidSubSchema, "patternProperties", nil)
			}
			v, err := b.BuildSub(sub, []any{"patternProperties", pattern})
			if err != nil {
				return nil, false, err
			}
			s.patternProperties = append(s.patternProperties, patternPropEntry{re: re, validator: v})
		}
		return s, true, nil
	case "additionalProperties":
		v, err := b.BuildSub(value, []any{"additionalProperties"})
		if err != nil {
			return nil, false, err
		}
		s.additionalProps = v
		s.hasAdditionalProps = true
		return s, true, nil
	case "propertyNames":
		v, err := b.BuildSub(value, []any{"propertyNames"})
		if err != nil {
			return nil, false, err
		}
		s.propertyNames = v
		return s, true, nil
	case "prefixItems":
		arr, ok := value.([]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "prefixItems", nil)
		}
		for i, sub := range arr {
			v, err := b.BuildSub(sub, []any{"prefixItems", i})
			if err != nil {
				return nil, false, err
			}
			s.prefixItems = append(s.prefixItems, v)
		}
		return s, true, nil
	case "items":
		if arr, ok := value.([]any); ok {
			// Draft 7 tuple-typing form: items is an array of schemas.
			s.itemsIsArrayForm = true
			for i, sub := range arr {
				v, err := b.BuildSub(sub, []any{"items", i})
				if err != nil {
					return nil, false, err
				}
				s.prefixItems = append(s.prefixItems, v)
			}
			return s, true, nil
		}
		v, err := b.BuildSub(value, []any{"items"})
		if err != nil {
			return nil, false, err
		}
		s.items = v
		s.hasItems = true
		return s, true, nil
	case "additionalItems":
		v, err := b.BuildSub(value, []any{"additionalItems"})
		if err != nil {
			return nil, false, err
		}
		s.additionalItems = v
		s.hasAdditionalItems = true
		return s, true, nil
	case "contains":
		v, err := b.BuildSub(value, []any{"contains"})
		if err != nil {
			return nil, false, err
		}
		s.contains = v
		s.hasContains = true
		return s, true, nil
	case "minContains":
		n := intOf(value)
		s.minContains = &n
		return s, true, nil
	case "maxContains":
		n := intOf(value)
		s.maxContains = &n
		return s, true, nil
	case "allOf":
		arr, ok := value.([]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "allOf", nil)
		}
		for i, sub := range arr {
			v, err := b.BuildSub(sub, []any{"allOf", i})
			if err != nil {
				return nil, false, err
			}
			s.allOf = append(s.allOf, v)
		}
		return s, true, nil
	case "anyOf":
		arr, ok := value.([]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "anyOf", nil)
		}
		for i, sub := range arr {
			v, err := b.BuildSub(sub, []any{"anyOf", i})
			if err != nil {
				return nil, false, err
			}
			s.anyOf = append(s.anyOf, v)
		}
		return s, true, nil
	case "oneOf":
		arr, ok := value.([]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "oneOf", nil)
		}
		for i, sub := range arr {
			v, err := b.BuildSub(sub, []any{"oneOf", i})
			if err != nil {
				return nil, false, err
			}
			s.oneOf = append(s.oneOf, v)
		}
		return s, true, nil
	case "not":
		v, err := b.BuildSub(value, []any{"not"})
		if err != nil {
			return nil, false, err
		}
		s.not = v
		return s, true, nil
	case "if":
		v, err := b.BuildSub(value, []any{"if"})
		if err != nil {
			return nil, false, err
		}
		s.ifSchema = v
		return s, true, nil
	case "then":
		v, err := b.BuildSub(value, []any{"then"})
		if err != nil {
			return nil, false, err
		}
		s.thenSchema = v
		return s, true, nil
	case "else":
		v, err := b.BuildSub(value, []any{"else"})
		if err != nil {
			return nil, false, err
		}
		s.elseSchema = v
		return s, true, nil
	case "dependentSchemas":
		m, ok := value.(map[string]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "dependentSchemas", nil)
		}
		s.dependentSchemas = map[string]CompiledValidator{}
		for name, sub := range m {
			v, err := b.BuildSub(sub, []any{"dependentSchemas", name})
			if err != nil {
				return nil, false, err
			}
			s.dependentSchemas[name] = v
		}
		return s, true, nil
	default:
		return nil, false, nil
	}
}

// FinalizeValidators implements Vocabulary.
func (ApplicatorVocabulary) FinalizeValidators(state any) (any, bool, error) {
	s := state.(*applicatorState)
	empty := s.properties == nil && s.patternProperties == nil && !s.hasAdditionalProps &&
		s.propertyNames == nil && s.prefixItems == nil && !s.hasItems && !s.hasAdditionalItems &&
		!s.hasContains && s.allOf == nil && s.anyOf == nil && s.oneOf == nil && s.not == nil &&
		s.ifSchema == nil && s.dependentSchemas == nil
	if empty {
		return nil, false, nil
	}
	return s, true, nil
}

// Validate implements Vocabulary.
func (ApplicatorVocabulary) Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext) {
	s := state.(*applicatorState)

	if obj, ok := data.(map[string]any); ok {
		applyObjectKeywords(s, obj, ctx)
	}
	if arr, ok := data.([]any); ok {
		applyArrayKeywords(s, arr, ctx)
	}

	for i, sub := range s.allOf {
		_, ctx = ValidateAs(data, i, sub, ctx)
	}

	if s.anyOf != nil {
		anyMatched := false
		for i, sub := range s.anyOf {
			_, inner := ValidateDetach(data, i, sub, ctx)
			if len(inner.Errors) == 0 {
				anyMatched = true
				mergeEvaluatedInto(ctx.currentFrame(), inner.currentFrame())
			}
		}
		if !anyMatched {
			ctx.addError(KindAnyOf, data, nil, ApplicatorVocabulary{})
		}
	}

	if s.oneOf != nil {
		matchCount := 0
		var matchedFrame *evaluatedFrame
		for i, sub := range s.oneOf {
			_, inner := ValidateDetach(data, i, sub, ctx)
			if len(inner.Errors) == 0 {
				matchCount++
				matchedFrame = inner.currentFrame()
			}
		}
		switch {
		case matchCount == 0:
			ctx.addError(KindOneOfNone, data, nil, ApplicatorVocabulary{})
		case matchCount > 1:
			ctx.addError(KindOneOfMulti, data, map[string]any{"count": matchCount}, ApplicatorVocabulary{})
		default:
			mergeEvaluatedInto(ctx.currentFrame(), matchedFrame)
		}
	}

	if s.not != nil {
		_, inner := ValidateDetach(data, "not", s.not, ctx)
		if len(inner.Errors) == 0 {
			ctx.addError(KindNot, data, nil, ApplicatorVocabulary{})
		}
	}

	if s.ifSchema != nil {
		_, inner := ValidateDetach(data, "if", s.ifSchema, ctx)
		if len(inner.Errors) == 0 {
			if s.thenSchema != nil {
				_, ctx = ValidateAs(data, "then", s.thenSchema, ctx)
			}
		} else if s.elseSchema != nil {
			_, ctx = ValidateAs(data, "else", s.elseSchema, ctx)
		}
	}

	if obj, ok := data.(map[string]any); ok {
		for name, sub := range s.dependentSchemas {
			if _, present := obj[name]; !present {
				continue
			}
			_, ctx = ValidateAs(data, "dependentSchemas/"+name, sub, ctx)
		}
	}

	return data, ctx
}

func applyObjectKeywords(s *applicatorState, obj map[string]any, ctx *ValidationContext) {
	matchedByPattern := map[string]bool{}
	for name := range obj {
		if sub, ok := s.properties[name]; ok {
			_, ctx = ValidateIn(obj[name], name, name, sub, ctx)
		}
		for _, pp := range s.patternProperties {
			if pp.re.MatchString(name) {
				_, ctx = ValidateIn(obj[name], name, name, pp.validator, ctx)
				matchedByPattern[name] = true
			}
		}
	}
	if s.hasAdditionalProps {
		for name, val := range obj {
			_, inProps := s.properties[name]
			if inProps || matchedByPattern[name] {
				continue
			}
			ac, ok := s.additionalProps.(*BooleanSchema)
			if ok && !ac.Valid {
				ctx.addError(KindAdditionalProperties, obj, map[string]any{"property": name}, ApplicatorVocabulary{})
				continue
			}
			_, ctx = ValidateIn(val, name, name, s.additionalProps, ctx)
		}
	}
	if s.propertyNames != nil {
		for name := range obj {
			_, inner := ValidateDetach(name, "propertyNames", s.propertyNames, ctx)
			if len(inner.Errors) != 0 {
				ctx.addError(KindPropertyNames, obj, map[string]any{"property": name}, ApplicatorVocabulary{})
			}
		}
	}
}

func applyArrayKeywords(s *applicatorState, arr []any, ctx *ValidationContext) {
	for i, item := range arr {
		if i < len(s.prefixItems) {
			_, ctx = ValidateIn(item, i, i, s.prefixItems[i], ctx)
			continue
		}
		if s.itemsIsArrayForm {
			if s.hasAdditionalItems {
				_, ctx = ValidateIn(item, i, i, s.additionalItems, ctx)
			}
			continue
		}
		if s.hasItems {
			_, ctx = ValidateIn(item, i, i, s.items, ctx)
		}
	}

	if s.hasContains {
		matched := 0
		for i, item := range arr {
			_, inner := ValidateDetach(item, i, s.contains, ctx)
			if len(inner.Errors) == 0 {
				matched++
				ctx.markIndexEvaluated(i)
			}
		}
		min := 1
		if s.minContains != nil {
			min = *s.minContains
		}
		if matched < min {
			ctx.addError(KindMinContains, arr, map[string]any{"min": min}, ApplicatorVocabulary{})
		}
		if s.maxContains != nil && matched > *s.maxContains {
			ctx.addError(KindMaxContains, arr, map[string]any{"max": *s.maxContains}, ApplicatorVocabulary{})
		}
	}
}

// FormatError implements Vocabulary.
func (ApplicatorVocabulary) FormatError(kind string, args map[string]any, data any) string {
	return defaultMessageFor(kind, args)
}
