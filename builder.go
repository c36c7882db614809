package jsv

import (
	"context"
	"sort"
)

type stageItem struct {
	kind string // "resolved" or "dynamic_all"
	key  Key
	name string
}

func (s stageItem) dedupKey() string {
	if s.kind == "dynamic_all" {
		return "dynamic_all:" + s.name
	}
	return "resolved:" + string(s.key)
}

// Builder drives compilation of staged keys into a {Key → validator} map.
// A Builder is single-use: one root schema per instance.
type Builder struct {
	resolver   *Resolver
	opts       *BuildOptions
	validators map[Key]CompiledValidator

	queue  []stageItem
	queued map[string]bool

	// ctx is the context supplied to Build, reused by the callback methods
	// vocabulary modules invoke during HandleKeyword (BuildSub, StageRef),
	// whose interface signature predates context plumbing.
	ctx context.Context

	// per-compileOne scratch state, valid only while compiling; read by
	// vocabulary modules via BuildSub/RegisterCast callbacks.
	currentNS         Namespace
	currentMetaURI    string
	currentSchemaPath []any
	pendingCast       *castDescriptor
}

// NewBuilder constructs a Builder over resolver with the given options.
func NewBuilder(resolver *Resolver, opts *BuildOptions) *Builder {
	if opts == nil {
		opts = &BuildOptions{}
	}
	return &Builder{
		resolver:   resolver,
		opts:       opts.withDefaults(),
		validators: make(map[Key]CompiledValidator),
		queued:     make(map[string]bool),
	}
}

// Build drives the compilation of source (a Ref, a Namespace, or "root")
// and everything it transitively reaches, returning the completed
// {Key → validator} map and the root's Key.
func (b *Builder) Build(ctx context.Context, source any) (map[Key]CompiledValidator, Key, error) {
	b.ctx = ctx
	rootKey, err := b.stageSource(ctx, source)
	if err != nil {
		return nil, "", err
	}
	if err := b.buildAllStaged(ctx); err != nil {
		return nil, "", err
	}
	return b.validators, rootKey, nil
}

func (b *Builder) stageSource(ctx context.Context, source any) (Key, error) {
	var ns Namespace
	switch v := source.(type) {
	case Namespace:
		ns = v
	case string:
		ns = Namespace(v)
	case Ref:
		if err := b.resolver.Resolve(ctx, v.NS); err != nil {
			return "", err
		}
		key := keyFromRef(v)
		b.stage(stageItem{kind: "resolved", key: key})
		return key, nil
	default:
		ns = RootNS
	}
	if err := b.resolver.Resolve(ctx, ns); err != nil && !ns.IsRoot() {
		return "", err
	}
	key := NSKey(ns)
	b.stage(stageItem{kind: "resolved", key: key})
	return key, nil
}

func (b *Builder) stage(item stageItem) {
	dk := item.dedupKey()
	if b.queued[dk] {
		return
	}
	b.queued[dk] = true
	b.queue = append(b.queue, item)
}

func (b *Builder) buildAllStaged(ctx context.Context) error {
	for len(b.queue) > 0 {
		item := b.queue[0]
		b.queue = b.queue[1:]
		switch item.kind {
		case "resolved":
			if err := b.processResolvedKey(ctx, item.key); err != nil {
				return err
			}
		case "dynamic_all":
			for _, k := range b.resolver.DynamicAnchorKeys(item.name) {
				b.stage(stageItem{kind: "resolved", key: k})
			}
		}
	}
	return nil
}

func (b *Builder) processResolvedKey(ctx context.Context, key Key) error {
	if _, ok := b.validators[key]; ok {
		return nil
	}
	entry, ok := b.resolver.cache[key]
	if !ok {
		return NewBuildError(ReasonUnresolved, "build", nil)
	}
	if entry.alias != nil {
		b.validators[key] = &Alias{Target: entry.alias.target}
		b.stage(stageItem{kind: "resolved", key: entry.alias.target})
		return nil
	}
	compiled, err := b.compileResolved(ctx, entry.resolved)
	if err != nil {
		return err
	}
	b.validators[key] = compiled
	return nil
}

func (b *Builder) compileResolved(ctx context.Context, res *Resolved) (CompiledValidator, error) {
	if bval, ok := res.Raw.(bool); ok {
		return &BooleanSchema{Valid: bval, SchemaPath: res.RevPath}, nil
	}
	raw, ok := res.Raw.(map[string]any)
	if !ok {
		return nil, NewBuildError(ReasonInvalidSubSchema, "compile", res.RevPath)
	}
	return b.compileOne(ctx, raw, res.NS, res.MetaURI, res.RevPath)
}

// compileOne implements spec §4.2 "Compile one": fold the vocabulary
// modules active for metaURI (descending priority, Cast prepended) over
// raw's keyword pairs, finalize each, and lift out the Cast contribution.
func (b *Builder) compileOne(ctx context.Context, raw map[string]any, ns Namespace, metaURI string, schemaPath []any) (*Subschema, error) {
	vocabMap, err := b.resolver.FetchVocabulary(ctx, metaURI)
	if err != nil {
		return nil, err
	}
	mods, err := b.orderedModules(vocabMap)
	if err != nil {
		return nil, err
	}

	remaining := make(map[string]any, len(raw))
	for k, v := range raw {
		remaining[k] = v
	}

	prevNS, prevMeta, prevPath, prevCast := b.currentNS, b.currentMetaURI, b.currentSchemaPath, b.pendingCast
	b.currentNS, b.currentMetaURI, b.currentSchemaPath, b.pendingCast = ns, metaURI, schemaPath, nil
	defer func() {
		b.currentNS, b.currentMetaURI, b.currentSchemaPath, b.pendingCast = prevNS, prevMeta, prevPath, prevCast
	}()

	var entries []validatorEntry
	for _, m := range mods {
		acc := m.InitState(b.opts)
		for kw, val := range remaining {
			newAcc, consumed, err := m.HandleKeyword(kw, val, acc, b, raw)
			if err != nil {
				return nil, err
			}
			if consumed {
				acc = newAcc
				delete(remaining, kw)
			}
		}
		final, ok, err := m.FinalizeValidators(acc)
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, validatorEntry{module: m, state: final})
		}
	}
	if _, hasRef := raw["$ref"]; hasRef && isSiblingIgnoreDialect(metaURI) {
		entries = keepOnlyCore(entries)
	}

	// entries were appended in descending-priority fold order; reverse so
	// execution order is ascending priority (spec §4.2 step 5).
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	sub := &Subschema{validators: entries, SchemaPath: schemaPath, Cast: b.pendingCast}
	return sub, nil
}

// isSiblingIgnoreDialect reports whether $ref siblings should be ignored, per
// spec §4.4's documented Draft 7 behaviour (2020-12 evaluates siblings
// normally).
func isSiblingIgnoreDialect(metaURI string) bool {
	return metaURI == Draft07 || metaURI == Draft07+"#"
}

// keepOnlyCore drops every validator entry except the one contributed by the
// Core vocabulary, implementing Draft 7's "$ref present → siblings ignored".
func keepOnlyCore(entries []validatorEntry) []validatorEntry {
	for _, e := range entries {
		if _, ok := e.module.(*CoreVocabulary); ok {
			return []validatorEntry{e}
		}
		if _, ok := e.module.(*draft7CoreVocabulary); ok {
			return []validatorEntry{e}
		}
	}
	return entries
}

func (b *Builder) orderedModules(vocabMap map[string]bool) ([]Vocabulary, error) {
	var mods []Vocabulary
	seen := map[Vocabulary]bool{}
	for uri, required := range vocabMap {
		// format-annotation never rejects. With AssertFormat set, every format
		// vocabulary (Draft 7's included) is served by the format-assertion
		// module; without it, a declared format-assertion vocabulary is
		// served by the annotation module.
		switch {
		case b.opts.AssertFormat && (uri == VocabFormatAnnotation202012 || uri == VocabFormatDraft7):
			uri = VocabFormatAssertion202012
		case !b.opts.AssertFormat && uri == VocabFormatAssertion202012:
			uri = VocabFormatAnnotation202012
		}
		mod, ok := b.opts.Vocabularies[uri]
		if !ok {
			if required {
				return nil, NewBuildError(ReasonUnknownVocabulary, uri, nil)
			}
			continue
		}
		if seen[mod] {
			continue
		}
		seen[mod] = true
		mods = append(mods, mod)
	}
	if mods == nil {
		return nil, NewBuildError(ReasonUndefinedVocabulary, "", nil)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Priority() > mods[j].Priority() })
	return append([]Vocabulary{&CastVocabulary{}}, mods...), nil
}

// BuildSub compiles a nested raw schema value encountered by a vocabulary
// module, e.g. properties.foo. If raw declares its own non-fragment $id, it
// is staged separately (so re-usable subschemas keep stable error paths,
// spec §4.2); otherwise it is compiled inline with the path extended by
// addPath.
func (b *Builder) BuildSub(raw any, addPath []any) (CompiledValidator, error) {
	switch v := raw.(type) {
	case bool:
		return &BooleanSchema{Valid: v, SchemaPath: append(append([]any{}, b.currentSchemaPath...), addPath...)}, nil
	case map[string]any:
		if idVal, ok := v["$id"].(string); ok && idVal != "" && !isFragmentOnly(idVal) {
			newNS, err := deriveNamespace(b.currentNS, idVal)
			if err != nil {
				return nil, err
			}
			key := NSKey(newNS)
			b.stage(stageItem{kind: "resolved", key: key})
			return &Alias{Target: key}, nil
		}
		schemaPath := append(append([]any{}, b.currentSchemaPath...), addPath...)
		return b.compileOne(b.ctx, v, b.currentNS, b.currentMetaURI, schemaPath)
	default:
		return nil, NewBuildError(ReasonInvalidSubSchema, "build_sub", addPath)
	}
}

// StageRef ensures the resource ref addresses is resolved and staged for
// compilation, returning its Key. Used by vocabulary modules handling $ref.
func (b *Builder) StageRef(ref Ref) (Key, error) {
	if err := b.resolver.Resolve(b.ctx, ref.NS); err != nil {
		return "", err
	}
	key := keyFromRef(ref)
	if ref.Kind == RefAnchor && ref.Dynamic {
		b.stage(stageItem{kind: "dynamic_all", name: ref.Name})
	}
	b.stage(stageItem{kind: "resolved", key: key})
	return key, nil
}

// RegisterCast is the side channel through which a vocabulary module
// (typically Format, when casting is enabled) attaches a value transform to
// the subschema currently being compiled. The first registration for a
// given subschema wins; later calls are ignored.
func (b *Builder) RegisterCast(fn CastFunc) {
	if !b.opts.Cast || b.pendingCast != nil {
		return
	}
	b.pendingCast = &castDescriptor{fn: fn}
}

// CurrentNamespace returns the namespace of the subschema presently being
// compiled, for vocabulary modules that need it (e.g. Core resolving $ref).
func (b *Builder) CurrentNamespace() Namespace {
	return b.currentNS
}

// Options exposes the builder's resolved BuildOptions to vocabulary modules.
func (b *Builder) Options() *BuildOptions {
	return b.opts
}
