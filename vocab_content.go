package jsv

import (
	"encoding/base64"
	"encoding/xml"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
)

// ContentVocabulary implements contentEncoding, contentMediaType and
// contentSchema as annotations that, when the builder was constructed with
// casting enabled, additionally decode the string payload and validate the
// decoded value against contentSchema.
type ContentVocabulary struct{}

const contentPriority = -10

// Priority implements Vocabulary.
func (ContentVocabulary) Priority() int { return contentPriority }

type contentState struct {
	encoding  string
	mediaType string
	schema    CompiledValidator
	hasSchema bool
	decode    bool // BuildOptions.Cast at compile time
}

// InitState implements Vocabulary.
func (ContentVocabulary) InitState(opts *BuildOptions) any {
	return &contentState{decode: opts != nil && opts.Cast}
}

// HandleKeyword implements Vocabulary.
func (ContentVocabulary) HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error) {
	s := state.(*contentState)
	switch kw {
	case "contentEncoding":
		str, _ := value.(string)
		s.encoding = str
		return s, true, nil
	case "contentMediaType":
		str, _ := value.(string)
		s.mediaType = str
		return s, true, nil
	case "contentSchema":
		v, err := b.BuildSub(value, []any{"contentSchema"})
		if err != nil {
			return nil, false, err
		}
		s.schema = v
		s.hasSchema = true
		return s, true, nil
	default:
		return nil, false, nil
	}
}

// FinalizeValidators implements Vocabulary.
func (ContentVocabulary) FinalizeValidators(state any) (any, bool, error) {
	s := state.(*contentState)
	if s.encoding == "" && s.mediaType == "" && !s.hasSchema {
		return nil, false, nil
	}
	return s, true, nil
}

// Validate implements Vocabulary.
func (ContentVocabulary) Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext) {
	s := state.(*contentState)
	str, ok := data.(string)
	if !ok || !s.decode {
		return data, ctx
	}

	payload := []byte(str)
	if s.encoding != "" {
		decoded, err := decodeContent(s.encoding, str)
		if err != nil {
			ctx.addError(KindContentEncoding, data, map[string]any{"encoding": s.encoding}, ContentVocabulary{})
			return data, ctx
		}
		payload = decoded
	}

	if s.mediaType == "" && !s.hasSchema {
		return data, ctx
	}

	decoded, err := decodeMediaType(s.mediaType, payload)
	if err != nil {
		ctx.addError(KindContentMediaType, data, map[string]any{"mediaType": s.mediaType}, ContentVocabulary{})
		return data, ctx
	}

	if s.hasSchema {
		_, inner := ValidateDetach(decoded, "contentSchema", s.schema, ctx)
		if len(inner.Errors) != 0 {
			ctx.addError(KindContentSchema, data, nil, ContentVocabulary{})
		}
	}

	return data, ctx
}

func decodeContent(encoding, str string) ([]byte, error) {
	switch encoding {
	case "base64":
		return base64.StdEncoding.DecodeString(str)
	case "base64url":
		return base64.URLEncoding.DecodeString(str)
	case "", "7bit", "8bit", "binary", "quoted-printable":
		return []byte(str), nil
	default:
		return nil, ErrUnsupportedEncoding
	}
}

func decodeMediaType(mediaType string, payload []byte) (any, error) {
	switch mediaType {
	case "", "application/json":
		var v any
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "application/yaml", "text/yaml", "application/x-yaml":
		var v any
		if err := yaml.Unmarshal(payload, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "application/xml", "text/xml":
		if err := xml.Unmarshal(payload, new(struct {
			XMLName xml.Name
		})); err != nil {
			return nil, err
		}
		return string(payload), nil
	case "text/plain":
		return string(payload), nil
	default:
		return nil, ErrUnsupportedMediaType
	}
}

// FormatError implements Vocabulary.
func (ContentVocabulary) FormatError(kind string, args map[string]any, data any) string {
	return defaultMessageFor(kind, args)
}
