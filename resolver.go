package jsv

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Tag distinguishes data a backend already normalized to pure JSON (Normal)
// from schema-ish data that still needs the Normalizer's pass (SchemaTag).
type Tag int

const (
	// Normal marks data that is already pure JSON (map[string]any, []any,
	// string, float64/json.Number, bool, nil).
	Normal Tag = iota
	// SchemaTag marks data that may still carry native tagged values and
	// must be passed through the Normalizer before scanning.
	SchemaTag
)

// ResolverBackend fetches the raw document addressed by uri. It returns the
// fetched value, a Tag describing whether it is already pure JSON, and an
// error if the backend cannot serve this URI at all (the resolver tries the
// next backend in the chain on error).
type ResolverBackend interface {
	Resolve(ctx context.Context, uri string) (any, Tag, error)
}

// MapBackend serves documents pre-loaded into an in-memory map through the
// fetch chain. PutCached does not go through it: it ingests directly.
type MapBackend struct {
	docs map[string]any
}

// NewMapBackend constructs an empty MapBackend.
func NewMapBackend() *MapBackend {
	return &MapBackend{docs: make(map[string]any)}
}

// Put registers raw (already-normal) content under uri.
func (b *MapBackend) Put(uri string, raw any) {
	b.docs[uri] = raw
}

// Resolve implements ResolverBackend.
func (b *MapBackend) Resolve(ctx context.Context, uri string) (any, Tag, error) {
	if doc, ok := b.docs[uri]; ok {
		return doc, Normal, nil
	}
	return nil, Normal, fmt.Errorf("jsv: map backend has no document for %q", uri)
}

// HTTPBackend fetches documents over HTTP/HTTPS, mirroring the 10-second
// timeout and status-code check of a conservative default schema loader.
type HTTPBackend struct {
	Client *http.Client
	Codec  Codec
}

// NewHTTPBackend constructs an HTTPBackend with a 10-second client timeout.
func NewHTTPBackend(codec Codec) *HTTPBackend {
	return &HTTPBackend{
		Client: &http.Client{Timeout: 10 * time.Second},
		Codec:  codec,
	}
}

// Resolve implements ResolverBackend.
func (b *HTTPBackend) Resolve(ctx context.Context, uri string) (any, Tag, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, Normal, fmt.Errorf("jsv: building request for %q: %w", uri, err)
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, Normal, fmt.Errorf("jsv: fetching %q: %w", uri, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, Normal, fmt.Errorf("jsv: fetching %q: unexpected status %d", uri, resp.StatusCode)
	}
	doc, err := b.Codec.Decode(resp.Body)
	if err != nil {
		return nil, Normal, fmt.Errorf("jsv: decoding %q: %w", uri, err)
	}
	return doc, Normal, nil
}

// Resolved is the cache entry for an addressable schema: its content plus
// where it came from.
type Resolved struct {
	Raw          any
	MetaURI      string
	Vocabularies map[string]bool // non-nil only for meta-schema entries
	NS           Namespace
	ParentNS     Namespace
	RevPath      []any // segment path from the document root, outermost first
}

// aliasEntry is a cache entry pointing at another Key holding the canonical
// Resolved content.
type aliasEntry struct {
	target Key
}

// cacheEntry is either a *Resolved or an aliasEntry.
type cacheEntry struct {
	resolved *Resolved
	alias    *aliasEntry
}

// Resolver fetches and canonicalizes schema documents, extracting every
// addressable sub-schema by $id/$anchor/$dynamicAnchor/JSON-Pointer and
// loading the per-dialect vocabulary meta-schemas. A Resolver is single-use:
// one root schema per instance.
type Resolver struct {
	backends       []ResolverBackend
	cache          map[Key]cacheEntry
	defaultDialect string
}

// NewResolver constructs a Resolver with the given fetch chain, tried in
// order for every URI until one backend succeeds.
func NewResolver(defaultDialect string, backends ...ResolverBackend) *Resolver {
	if defaultDialect == "" {
		defaultDialect = Draft202012
	}
	return &Resolver{
		backends:       backends,
		cache:          make(map[Key]cacheEntry),
		defaultDialect: defaultDialect,
	}
}

// PutCached injects a pre-fetched, already-normal document under namespace
// ns, for internal reference (e.g. the root schema supplied by the caller).
func (r *Resolver) PutCached(ns Namespace, raw any) error {
	return r.ingest(ns, raw, ns, nil)
}

// Resolve ensures the resource addressed by ns is fetched and scanned.
// Idempotent: re-resolving an already-cached namespace is a no-op.
func (r *Resolver) Resolve(ctx context.Context, ns Namespace) error {
	key := NSKey(ns)
	if _, ok := r.cache[key]; ok {
		return nil
	}
	if ns.IsRoot() {
		return NewBuildError(ReasonUnresolved, "resolve", nil)
	}
	raw, err := r.fetchViaChain(ctx, string(ns))
	if err != nil {
		return err
	}
	return r.ingest(ns, raw, ns, nil)
}

func (r *Resolver) fetchViaChain(ctx context.Context, uri string) (any, error) {
	if len(r.backends) == 0 {
		return nil, ErrNoBackendRegistered
	}
	var reasons []string
	for _, b := range r.backends {
		doc, tag, err := b.Resolve(ctx, uri)
		if err == nil && tag != Normal {
			doc, err = NewNormalizer().Normalize(doc)
		}
		if err == nil {
			return doc, nil
		}
		reasons = append(reasons, err.Error())
	}
	return nil, NewBuildError(ReasonResolverError, fmt.Sprintf("%v", reasons), nil)
}

// FetchResolved returns the Resolved entry for key, dereferencing one alias
// hop (the cache guarantees every alias chain terminates after one hop).
func (r *Resolver) FetchResolved(key Key) (*Resolved, error) {
	entry, ok := r.cache[key]
	if !ok {
		return nil, NewBuildError(ReasonUnresolved, "fetch_resolved", nil)
	}
	if entry.alias != nil {
		target, ok := r.cache[entry.alias.target]
		if !ok || target.resolved == nil {
			return nil, NewBuildError(ReasonUnresolved, "fetch_resolved", nil)
		}
		return target.resolved, nil
	}
	return entry.resolved, nil
}

// FetchVocabulary returns the vocabulary map declared by the meta-schema at
// metaURI, resolving it (and its own meta loop) first if necessary.
func (r *Resolver) FetchVocabulary(ctx context.Context, metaURI string) (map[string]bool, error) {
	ns := Namespace(stripFragment(metaURI))
	if err := r.Resolve(ctx, ns); err != nil {
		// A meta-schema that can't be fetched (e.g. well-known URIs with no
		// network backend configured) falls back to the synthetic default.
		return defaultVocabularies(metaURI), nil
	}
	res, err := r.FetchResolved(NSKey(ns))
	if err != nil || res.Vocabularies == nil {
		return defaultVocabularies(metaURI), nil
	}
	return res.Vocabularies, nil
}

// DynamicAnchorKeys returns every currently-known {dynamic_anchor, ns, name}
// Key with the given name, across every namespace scanned so far.
func (r *Resolver) DynamicAnchorKeys(name string) []Key {
	var keys []Key
	for k := range r.cache {
		if k.IsDynamicAnchor() && k.Name() == name {
			keys = append(keys, k)
		}
	}
	return keys
}

// ingest scans a freshly fetched document, populating Resolved/Alias cache
// entries for every addressable sub-schema reachable from it, then resolves
// its meta-schema loop.
func (r *Resolver) ingest(externalNS Namespace, raw any, docNS Namespace, revPath []any) error {
	doc, ok := raw.(map[string]any)
	if !ok {
		if _, isBool := raw.(bool); isBool {
			rootKey := NSKey(docNS)
			if err := r.putResolved(rootKey, &Resolved{
				Raw: raw, MetaURI: r.defaultDialect, NS: docNS, ParentNS: docNS, RevPath: revPath,
			}); err != nil {
				return err
			}
			if externalNS != docNS {
				if err := r.putAlias(NSKey(externalNS), rootKey); err != nil {
					return err
				}
			}
			return nil
		}
		return NewBuildError(ReasonInvalidSubSchema, "ingest", revPath)
	}

	schemaURI, _ := doc["$schema"].(string)
	metaURI := schemaURI
	if metaURI == "" {
		metaURI = r.defaultDialect
	}
	metaURI = stripFragment(metaURI)

	scanner := &scanState{r: r, metaURI: metaURI}
	if err := scanner.scan(doc, docNS, docNS, nil); err != nil {
		return err
	}

	rootKey := NSKey(docNS)
	if err := r.putResolved(rootKey, &Resolved{
		Raw: doc, MetaURI: metaURI, NS: docNS, ParentNS: docNS, RevPath: nil,
	}); err != nil {
		return err
	}
	if externalNS != docNS {
		if err := r.putAlias(NSKey(externalNS), rootKey); err != nil {
			return err
		}
	}

	return r.resolveMetaLoop(context.Background(), metaURI)
}

func (r *Resolver) resolveMetaLoop(ctx context.Context, metaURI string) error {
	ns := Namespace(stripFragment(metaURI))
	key := NSKey(ns)
	if _, ok := r.cache[key]; ok {
		return nil
	}
	doc, err := r.fetchViaChain(ctx, string(ns))
	if err != nil {
		// Well-known meta-schemas may have no configured backend; the
		// synthetic fallback vocabulary map covers this at FetchVocabulary
		// time, so a failed meta fetch is not itself fatal here.
		return nil
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	vocab := extractVocabulary(m)
	if err := r.putResolved(key, &Resolved{
		Raw: doc, MetaURI: metaURI, Vocabularies: vocab, NS: ns, ParentNS: ns,
	}); err != nil {
		return err
	}
	if metaSchema, ok := m["$schema"].(string); ok && metaSchema != "" {
		return r.resolveMetaLoop(ctx, stripFragment(metaSchema))
	}
	return nil
}

func extractVocabulary(meta map[string]any) map[string]bool {
	raw, ok := meta["$vocabulary"].(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]bool, len(raw))
	for uri, req := range raw {
		b, _ := req.(bool)
		out[uri] = b
	}
	return out
}

func (r *Resolver) putResolved(key Key, res *Resolved) error {
	if existing, ok := r.cache[key]; ok {
		if existing.resolved != nil && !rawEqual(existing.resolved.Raw, res.Raw) {
			return NewBuildError(ReasonDuplicateResolution, "put_resolved", nil)
		}
		return nil
	}
	r.cache[key] = cacheEntry{resolved: res}
	return nil
}

func (r *Resolver) putAlias(key, target Key) error {
	if existing, ok := r.cache[key]; ok {
		if existing.alias != nil && existing.alias.target == target {
			return nil
		}
		if existing.resolved != nil {
			return NewBuildError(ReasonKeyExists, "put_alias", nil)
		}
	}
	r.cache[key] = cacheEntry{alias: &aliasEntry{target: target}}
	return nil
}

// rawEqual is a shallow-enough structural comparison used only to detect
// genuine duplicate-resolution conflicts (same Key, different content);
// false negatives here just mean an occasional spurious duplicate error.
func rawEqual(a, b any) bool {
	af, aok := toFloatIfNumber(a)
	bf, bok := toFloatIfNumber(b)
	if aok && bok {
		return af == bf
	}
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !rawEqual(v, bv[k]) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !rawEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// scanState carries the per-ingest scanning cursor described in spec §4.1.
type scanState struct {
	r       *Resolver
	metaURI string
}

// scan recursively descends the values of a document, registering aliases
// for every $id/$anchor/$dynamicAnchor found, and pointer-keyed entries for
// every reachable map-valued sub-schema.
func (s *scanState) scan(node any, ns Namespace, parentNS Namespace, revPath []any) error {
	doc, ok := node.(map[string]any)
	if !ok {
		return nil
	}

	currentNS := ns
	if idVal, ok := doc["$id"].(string); ok && idVal != "" {
		if isFragmentOnly(idVal) {
			// A fragment-only $id is treated as an $anchor (spec §4.1 step 3a).
			if err := s.r.putAlias(AnchorKey(ns, trimFragment(idVal)), PointerKey(ns, revPath)); err != nil {
				return err
			}
		} else {
			derived, err := deriveNamespace(ns, idVal)
			if err != nil {
				return err
			}
			currentNS = derived
			if len(revPath) > 0 {
				if err := s.r.putResolved(NSKey(currentNS), &Resolved{
					Raw: doc, MetaURI: s.metaURI, NS: currentNS, ParentNS: parentNS, RevPath: revPath,
				}); err != nil {
					return err
				}
			}
		}
	}

	if len(revPath) > 0 {
		ptrKey := PointerKey(ns, revPath)
		var err error
		if currentNS != ns {
			err = s.r.putAlias(ptrKey, NSKey(currentNS))
		} else {
			err = s.r.putResolved(ptrKey, &Resolved{
				Raw: doc, MetaURI: s.metaURI, NS: currentNS, ParentNS: parentNS, RevPath: revPath,
			})
		}
		if err != nil {
			return err
		}
	}

	if anchor, ok := doc["$anchor"].(string); ok && anchor != "" {
		if err := s.r.putAlias(AnchorKey(currentNS, anchor), PointerKey(currentNS, relativeRevPath(revPath, currentNS, ns))); err != nil {
			return err
		}
	}
	if dynAnchor, ok := doc["$dynamicAnchor"].(string); ok && dynAnchor != "" {
		if err := s.r.putAlias(DynamicAnchorKey(currentNS, dynAnchor), PointerKey(currentNS, relativeRevPath(revPath, currentNS, ns))); err != nil {
			return err
		}
	}

	for key, val := range doc {
		switch key {
		case "enum", "const":
			continue // not schemas (spec §4.1 step 4)
		case "properties", "$defs", "definitions", "patternProperties", "dependentSchemas":
			sub, ok := val.(map[string]any)
			if !ok {
				continue
			}
			for propName, propSchema := range sub {
				if err := s.scan(propSchema, currentNS, currentNS, append(append([]any{}, revPath...), key, propName)); err != nil {
					return err
				}
			}
		default:
			switch v := val.(type) {
			case map[string]any:
				if err := s.scan(v, currentNS, currentNS, append(append([]any{}, revPath...), key)); err != nil {
					return err
				}
			case []any:
				for i, item := range v {
					if err := s.scan(item, currentNS, currentNS, append(append([]any{}, revPath...), key, i)); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func isFragmentOnly(id string) bool {
	return len(id) > 0 && id[0] == '#'
}

func trimFragment(id string) string {
	if len(id) > 0 && id[0] == '#' {
		return id[1:]
	}
	return id
}

// relativeRevPath is the rev_path recorded against currentNS for an anchor:
// revPath unchanged when the node declares no new namespace, and the empty
// path when the anchor sits on the node whose $id introduced currentNS.
func relativeRevPath(revPath []any, currentNS, scanNS Namespace) []any {
	if currentNS == scanNS {
		return revPath
	}
	return nil
}
