package jsv

import (
	"context"

	i18n "github.com/kaptinlin/go-i18n"
)

// Schema is a compiled, immutable schema graph ready for validation. It is
// safe for concurrent use by any number of ValidateInstance calls.
type Schema struct {
	validators map[Key]CompiledValidator
	root       Key
	formatter  *ErrorFormatter
}

// CompileOptions configures Compile.
type CompileOptions struct {
	// Backends are tried in order to resolve external $ref targets not
	// already present in Documents. An HTTPBackend is registered by default
	// if none are supplied.
	Backends []ResolverBackend
	// Documents pre-seeds the resolver cache, e.g. the schema's own source
	// document plus any local $ref targets, keyed by namespace.
	Documents map[string]any
	Build     BuildOptions
	// SortDescending controls ordering of NormalizedReport.Details.
	SortDescending bool
	// Localizer, if set, renders error messages through it instead of each
	// vocabulary's FormatError.
	Localizer *i18n.Localizer
}

// Compile resolves and builds source (typically a map[string]any decoded
// from JSON, or a bool) into a Schema. source is registered under the root
// namespace; additional documents referenced by $ref are fetched from
// opts.Documents or opts.Backends.
func Compile(ctx context.Context, source any, opts *CompileOptions) (*Schema, error) {
	if opts == nil {
		opts = &CompileOptions{}
	}
	backends := opts.Backends
	if len(backends) == 0 {
		backends = []ResolverBackend{NewHTTPBackend(NewDefaultCodec())}
	}
	resolver := NewResolver(opts.Build.DefaultDialect, backends...)

	for ns, doc := range opts.Documents {
		if err := resolver.PutCached(Namespace(ns), doc); err != nil {
			return nil, err
		}
	}
	if _, ok := opts.Documents[string(RootNS)]; !ok {
		if err := resolver.PutCached(RootNS, source); err != nil {
			return nil, err
		}
	}

	builder := NewBuilder(resolver, &opts.Build)
	validators, root, err := builder.Build(ctx, RootNS)
	if err != nil {
		return nil, err
	}
	return &Schema{
		validators: validators,
		root:       root,
		formatter:  &ErrorFormatter{SortDescending: opts.SortDescending, Localizer: opts.Localizer},
	}, nil
}

// ValidateInstance validates data against the compiled schema, returning the
// normalized, JSON-encodable report (spec §6 shape).
func (s *Schema) ValidateInstance(data any) *NormalizedReport {
	ctx := NewValidationContext(s.validators, RootNS, &ValidateOptions{Formatter: s.formatter})
	_, ctx = ValidateByKey(data, s.root, ctx)
	return s.formatter.Format(ctx.Errors)
}

// ValidateInstanceCast is ValidateInstance but additionally applies the
// deferred casts of the root schema and of schemas reached from it through
// $ref/$dynamicRef, returning the possibly-cast data alongside the report.
// Casts of subschemas reached through applicator keywords (properties,
// items, allOf, oneOf, ...) are computed but not written back into the
// returned data. Casting must have been enabled via CompileOptions.Build.Cast.
func (s *Schema) ValidateInstanceCast(data any) (any, *NormalizedReport) {
	opts := &ValidateOptions{Cast: true, Formatter: s.formatter}
	ctx := NewValidationContext(s.validators, RootNS, opts)
	out, ctx := ValidateByKey(data, s.root, ctx)
	return out, s.formatter.Format(ctx.Errors)
}
