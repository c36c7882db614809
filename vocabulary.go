package jsv

// Dialect meta-schema URIs recognized via $schema.
const (
	Draft202012 = "https://json-schema.org/draft/2020-12/schema"
	Draft07     = "http://json-schema.org/draft-07/schema"
)

// Vocabulary IRIs for Draft 2020-12, as declared by its meta-schema's
// $vocabulary map.
const (
	VocabCore202012             = "https://json-schema.org/draft/2020-12/vocab/core"
	VocabApplicator202012       = "https://json-schema.org/draft/2020-12/vocab/applicator"
	VocabUnevaluated202012      = "https://json-schema.org/draft/2020-12/vocab/unevaluated"
	VocabValidation202012       = "https://json-schema.org/draft/2020-12/vocab/validation"
	VocabMetaData202012         = "https://json-schema.org/draft/2020-12/vocab/meta-data"
	VocabFormatAnnotation202012 = "https://json-schema.org/draft/2020-12/vocab/format-annotation"
	VocabFormatAssertion202012  = "https://json-schema.org/draft/2020-12/vocab/format-assertion"
	VocabContent202012          = "https://json-schema.org/draft/2020-12/vocab/content"
)

// Draft 7 has no $vocabulary keyword; these are synthetic URIs for the
// fallback vocabulary map the resolver injects for Draft 7 documents.
const (
	VocabCoreDraft7       = "jsv:draft-07/vocab/core"
	VocabApplicatorDraft7 = "jsv:draft-07/vocab/applicator"
	VocabValidationDraft7 = "jsv:draft-07/vocab/validation"
	VocabMetaDataDraft7   = "jsv:draft-07/vocab/meta-data"
	VocabFormatDraft7     = "jsv:draft-07/vocab/format-annotation"
	VocabContentDraft7    = "jsv:draft-07/vocab/content"
)

// defaultVocabularies returns the synthetic fallback map injected for
// dialects whose meta-schema carries no $vocabulary keyword (Draft 7), or
// the standard map for dialects that do declare one explicitly but whose
// meta-schema could not be fetched (best-effort default).
func defaultVocabularies(metaURI string) map[string]bool {
	switch metaURI {
	case Draft07, Draft07 + "#":
		return map[string]bool{
			VocabCoreDraft7:       true,
			VocabApplicatorDraft7: true,
			VocabValidationDraft7: true,
			VocabMetaDataDraft7:   false,
			VocabFormatDraft7:     false,
			VocabContentDraft7:    false,
		}
	default:
		return map[string]bool{
			VocabCore202012:             true,
			VocabApplicator202012:       true,
			VocabUnevaluated202012:      true,
			VocabValidation202012:       true,
			VocabMetaData202012:         false,
			VocabFormatAnnotation202012: false,
			VocabFormatAssertion202012:  false,
			VocabContent202012:          false,
		}
	}
}

// Vocabulary is implemented once per (dialect-family, vocabulary IRI). The
// builder folds every registered vocabulary (sorted by descending Priority,
// Cast always first) over a schema's keyword pairs during compilation.
type Vocabulary interface {
	// Priority orders module participation during compile and validate;
	// lower numbers run first.
	Priority() int

	// InitState returns the per-subschema accumulator handed to HandleKeyword.
	InitState(opts *BuildOptions) any

	// HandleKeyword is offered one (keyword, value) pair of the raw schema at
	// a time. It returns (newState, true) if it consumed the pair, or
	// (nil, false) to leave it for the next module (or as an annotation-only
	// leftover if no module claims it).
	HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error)

	// FinalizeValidators converts the accumulated state into the immutable
	// validator state run during validation. Return (nil, false) to
	// contribute nothing to the compiled Subschema.
	FinalizeValidators(state any) (any, bool, error)

	// Validate runs the finalized validator state against data.
	Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext)

	// FormatError renders a human-readable message for one of this module's
	// error kinds.
	FormatError(kind string, args map[string]any, data any) string
}

// BuildOptions configures a Builder (and is forwarded to Vocabulary.InitState).
type BuildOptions struct {
	// Cast enables the deferred-cast side channel (§4.6). Off by default.
	Cast bool
	// AssertFormat enables the format-assertion vocabulary; when false,
	// "format" is annotation-only even for Draft 2020-12 documents that
	// declare format-assertion as required.
	AssertFormat bool
	// DefaultDialect is the meta-schema URI assumed when a document has no
	// $schema keyword.
	DefaultDialect string
	// Vocabularies overrides/extends the builtin vocabulary-IRI → Vocabulary
	// registry.
	Vocabularies map[string]Vocabulary
	// Formats is the FormatValidator consulted by the format vocabulary.
	Formats FormatValidator
}

func (o *BuildOptions) withDefaults() *BuildOptions {
	out := *o
	if out.DefaultDialect == "" {
		out.DefaultDialect = Draft202012
	}
	if out.Formats == nil {
		out.Formats = DefaultFormatValidator()
	}
	merged := builtinVocabularies(&out)
	for uri, v := range out.Vocabularies {
		merged[uri] = v
	}
	out.Vocabularies = merged
	return &out
}

// builtinVocabularies constructs the standard vocabulary-IRI registry.
func builtinVocabularies(opts *BuildOptions) map[string]Vocabulary {
	core := &CoreVocabulary{}
	validation := &ValidationVocabulary{}
	applicator := &ApplicatorVocabulary{}
	unevaluated := &UnevaluatedVocabulary{}
	content := &ContentVocabulary{}
	metadata := &MetaDataVocabulary{}
	formatAnnotation := &FormatVocabulary{Assert: false, Formats: opts.Formats}
	formatAssertion := &FormatVocabulary{Assert: true, Formats: opts.Formats}

	return map[string]Vocabulary{
		VocabCore202012:             core,
		VocabApplicator202012:       applicator,
		VocabUnevaluated202012:      unevaluated,
		VocabValidation202012:       validation,
		VocabMetaData202012:         metadata,
		VocabFormatAnnotation202012: formatAnnotation,
		VocabFormatAssertion202012:  formatAssertion,
		VocabContent202012:          content,

		VocabCoreDraft7:       &draft7CoreVocabulary{CoreVocabulary: core},
		VocabApplicatorDraft7: applicator,
		VocabValidationDraft7: validation,
		VocabMetaDataDraft7:   metadata,
		VocabFormatDraft7:     formatAnnotation,
		VocabContentDraft7:    content,
	}
}
