package jsv

import (
	"math/big"
	"regexp"
)

// ValidationVocabulary implements type, enum, const, the numeric assertions
// (multipleOf, minimum/maximum and their exclusive variants), string length
// and pattern, array length/uniqueItems, and object size/required/
// dependentRequired, for both dialects.
type ValidationVocabulary struct{}

const validationPriority = 10

// Priority implements Vocabulary.
func (ValidationVocabulary) Priority() int { return validationPriority }

type validationState struct {
	types []string
	enum  []any
	hasConst bool
	constVal any

	multipleOf *Rat
	maximum    *Rat
	minimum    *Rat
	exclMax    *Rat
	exclMin    *Rat

	maxLength *int
	minLength *int
	pattern   string

	maxItems    *int
	minItems    *int
	uniqueItems bool

	maxProperties     *int
	minProperties     *int
	required          []string
	dependentRequired map[string][]string
}

// InitState implements Vocabulary.
func (ValidationVocabulary) InitState(*BuildOptions) any {
	return &validationState{}
}

// HandleKeyword implements Vocabulary.
func (ValidationVocabulary) HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error) {
	s := state.(*validationState)
	switch kw {
	case "type":
		switch v := value.(type) {
		case string:
			s.types = []string{v}
		case []any:
			for _, t := range v {
				if str, ok := t.(string); ok {
					s.types = append(s.types, str)
				}
			}
		default:
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "type", nil)
		}
		return s, true, nil
	case "enum":
		v, ok := value.([]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "enum", nil)
		}
		s.enum = v
		return s, true, nil
	case "const":
		s.hasConst = true
		s.constVal = value
		return s, true, nil
	case "multipleOf":
		s.multipleOf = NewRat(value)
		return s, true, nil
	case "maximum":
		s.maximum = NewRat(value)
		return s, true, nil
	case "minimum":
		s.minimum = NewRat(value)
		return s, true, nil
	case "exclusiveMaximum":
		s.exclMax = NewRat(value)
		return s, true, nil
	case "exclusiveMinimum":
		s.exclMin = NewRat(value)
		return s, true, nil
	case "maxLength":
		n := intOf(value)
		s.maxLength = &n
		return s, true, nil
	case "minLength":
		n := intOf(value)
		s.minLength = &n
		return s, true, nil
	case "pattern":
		str, _ := value.(string)
		if _, err := regexp.Compile(str); err != nil {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "pattern", nil)
		}
		s.pattern = str
		return s, true, nil
	case "maxItems":
		n := intOf(value)
		s.maxItems = &n
		return s, true, nil
	case "minItems":
		n := intOf(value)
		s.minItems = &n
		return s, true, nil
	case "uniqueItems":
		b, _ := value.(bool)
		s.uniqueItems = b
		return s, true, nil
	case "maxProperties":
		n := intOf(value)
		s.maxProperties = &n
		return s, true, nil
	case "minProperties":
		n := intOf(value)
		s.minProperties = &n
		return s, true, nil
	case "required":
		v, ok := value.([]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "required", nil)
		}
		for _, item := range v {
			if str, ok := item.(string); ok {
				s.required = append(s.required, str)
			}
		}
		return s, true, nil
	case "dependentRequired":
		v, ok := value.(map[string]any)
		if !ok {
			return nil, false, NewBuildError(ReasonInvalidSubSchema, "dependentRequired", nil)
		}
		if s.dependentRequired == nil {
			s.dependentRequired = map[string][]string{}
		}
		for prop, deps := range v {
			list, _ := deps.([]any)
			var names []string
			for _, d := range list {
				if str, ok := d.(string); ok {
					names = append(names, str)
				}
			}
			s.dependentRequired[prop] = names
		}
		return s, true, nil
	default:
		return nil, false, nil
	}
}

// FinalizeValidators implements Vocabulary.
func (ValidationVocabulary) FinalizeValidators(state any) (any, bool, error) {
	s := state.(*validationState)
	empty := len(s.types) == 0 && s.enum == nil && !s.hasConst && s.multipleOf == nil &&
		s.maximum == nil && s.minimum == nil && s.exclMax == nil && s.exclMin == nil &&
		s.maxLength == nil && s.minLength == nil && s.pattern == "" &&
		s.maxItems == nil && s.minItems == nil && !s.uniqueItems &&
		s.maxProperties == nil && s.minProperties == nil && s.required == nil && s.dependentRequired == nil
	if empty {
		return nil, false, nil
	}
	return s, true, nil
}

// Validate implements Vocabulary.
func (ValidationVocabulary) Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext) {
	s := state.(*validationState)

	if len(s.types) > 0 {
		actual := getDataType(data)
		matched := false
		for _, t := range s.types {
			if typeMatches(t, actual) {
				matched = true
				break
			}
		}
		if !matched {
			ctx.addError(KindType, data, map[string]any{"expected": s.types, "actual": actual}, ValidationVocabulary{})
		}
	}

	if s.enum != nil {
		matched := false
		for _, v := range s.enum {
			if rawEqual(v, data) {
				matched = true
				break
			}
		}
		if !matched {
			ctx.addError(KindEnum, data, map[string]any{"allowed": s.enum}, ValidationVocabulary{})
		}
	}

	if s.hasConst && !rawEqual(s.constVal, data) {
		ctx.addError(KindConst, data, map[string]any{"expected": s.constVal}, ValidationVocabulary{})
	}

	if dataRat, ok := ratOf(data); ok {
		if s.multipleOf != nil {
			q := new(big.Rat).Quo(dataRat.Rat, s.multipleOf.Rat)
			if !q.IsInt() {
				ctx.addError(KindMultipleOf, data, map[string]any{"divisor": FormatRat(s.multipleOf)}, ValidationVocabulary{})
			}
		}
		if s.maximum != nil && dataRat.Cmp(s.maximum.Rat) > 0 {
			ctx.addError(KindMaximum, data, map[string]any{"maximum": FormatRat(s.maximum)}, ValidationVocabulary{})
		}
		if s.minimum != nil && dataRat.Cmp(s.minimum.Rat) < 0 {
			ctx.addError(KindMinimum, data, map[string]any{"minimum": FormatRat(s.minimum)}, ValidationVocabulary{})
		}
		if s.exclMax != nil && dataRat.Cmp(s.exclMax.Rat) >= 0 {
			ctx.addError(KindExclusiveMaximum, data, map[string]any{"maximum": FormatRat(s.exclMax)}, ValidationVocabulary{})
		}
		if s.exclMin != nil && dataRat.Cmp(s.exclMin.Rat) <= 0 {
			ctx.addError(KindExclusiveMinimum, data, map[string]any{"minimum": FormatRat(s.exclMin)}, ValidationVocabulary{})
		}
	}

	if str, ok := data.(string); ok {
		length := len([]rune(str))
		if s.maxLength != nil && length > *s.maxLength {
			ctx.addError(KindMaxLength, data, map[string]any{"max": *s.maxLength}, ValidationVocabulary{})
		}
		if s.minLength != nil && length < *s.minLength {
			ctx.addError(KindMinLength, data, map[string]any{"min": *s.minLength}, ValidationVocabulary{})
		}
		if s.pattern != "" {
			if re, err := regexp.Compile(s.pattern); err == nil && !re.MatchString(str) {
				ctx.addError(KindPattern, data, map[string]any{"pattern": s.pattern}, ValidationVocabulary{})
			}
		}
	}

	if arr, ok := data.([]any); ok {
		if s.maxItems != nil && len(arr) > *s.maxItems {
			ctx.addError(KindMaxItems, data, map[string]any{"max": *s.maxItems}, ValidationVocabulary{})
		}
		if s.minItems != nil && len(arr) < *s.minItems {
			ctx.addError(KindMinItems, data, map[string]any{"min": *s.minItems}, ValidationVocabulary{})
		}
		if s.uniqueItems && hasDuplicate(arr) {
			ctx.addError(KindUniqueItems, data, nil, ValidationVocabulary{})
		}
	}

	if obj, ok := data.(map[string]any); ok {
		if s.maxProperties != nil && len(obj) > *s.maxProperties {
			ctx.addError(KindMaxProperties, data, map[string]any{"max": *s.maxProperties}, ValidationVocabulary{})
		}
		if s.minProperties != nil && len(obj) < *s.minProperties {
			ctx.addError(KindMinProperties, data, map[string]any{"min": *s.minProperties}, ValidationVocabulary{})
		}
		for _, name := range s.required {
			if _, ok := obj[name]; !ok {
				ctx.addError(KindRequired, data, map[string]any{"property": name}, ValidationVocabulary{})
			}
		}
		for prop, deps := range s.dependentRequired {
			if _, present := obj[prop]; !present {
				continue
			}
			for _, dep := range deps {
				if _, ok := obj[dep]; !ok {
					ctx.addError(KindDependentRequired, data, map[string]any{"property": prop, "dependency": dep}, ValidationVocabulary{})
				}
			}
		}
	}

	return data, ctx
}

// FormatError implements Vocabulary.
func (ValidationVocabulary) FormatError(kind string, args map[string]any, data any) string {
	return defaultMessageFor(kind, args)
}

func typeMatches(expected, actual string) bool {
	if expected == actual {
		return true
	}
	return expected == "number" && actual == "integer"
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	default:
		if r := NewRat(v); r != nil {
			f, _ := r.Float64()
			return int(f)
		}
		return 0
	}
}

func ratOf(v any) (*Rat, bool) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return NewRat(v), true
	}
	if s, ok := v.(interface{ String() string }); ok {
		// json.Number satisfies this via its String method.
		if r := NewRat(s.String()); r != nil {
			return r, true
		}
	}
	return nil, false
}

func hasDuplicate(arr []any) bool {
	for i := 0; i < len(arr); i++ {
		for j := i + 1; j < len(arr); j++ {
			if rawEqual(arr[i], arr[j]) {
				return true
			}
		}
	}
	return false
}
