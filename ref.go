package jsv

import (
	"net/url"
	"strconv"
	"strings"
)

// RefKind distinguishes the three shapes a parsed $ref/$dynamicRef can take.
type RefKind int

const (
	// RefTop refers to the document root of a namespace (no fragment, or "#").
	RefTop RefKind = iota
	// RefPointer refers to a JSON Pointer location within a namespace.
	RefPointer
	// RefAnchor refers to a named $anchor/$dynamicAnchor within a namespace.
	RefAnchor
)

// Ref is the parsed form of a $ref/$dynamicRef string.
type Ref struct {
	NS      Namespace
	Kind    RefKind
	Segs    []any  // RefPointer: decoded JSON Pointer segments (string or int)
	Name    string // RefAnchor: anchor name
	Dynamic bool   // only meaningful when Kind == RefAnchor
}

// parseRef parses a $ref/$dynamicRef string relative to the enclosing
// namespace base, producing a Ref. dynamic is true for $dynamicRef.
func parseRef(base Namespace, raw string, dynamic bool) (Ref, error) {
	uriPart, fragPart := splitRef(raw)

	ns, err := deriveNamespace(base, raw)
	if err != nil {
		return Ref{}, err
	}

	if uriPart != "" && !isAbsoluteURI(uriPart) {
		// Relative non-fragment URI: namespace already derived above; the
		// fragment (if any) is resolved against the new namespace.
	}

	if fragPart == "" {
		return Ref{NS: ns, Kind: RefTop}, nil
	}
	if isJSONPointer(fragPart) {
		segs, err := parsePointerSegments(fragPart)
		if err != nil {
			return Ref{}, err
		}
		return Ref{NS: ns, Kind: RefPointer, Segs: segs}, nil
	}
	return Ref{NS: ns, Kind: RefAnchor, Name: fragPart, Dynamic: dynamic}, nil
}

// parsePointerSegments decodes a JSON Pointer fragment ("/a/b/0") into a
// sequence of segments, percent-decoding each and unescaping ~1 then ~0,
// promoting integer-looking segments to int (array indices).
func parsePointerSegments(pointer string) ([]any, error) {
	if pointer == "" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, NewBuildError(ReasonPointerError, "parse", nil)
	}
	raw := strings.Split(pointer[1:], "/")
	segs := make([]any, 0, len(raw))
	for _, s := range raw {
		decoded, err := url.PathUnescape(s)
		if err != nil {
			decoded = s
		}
		decoded = strings.ReplaceAll(decoded, "~1", "/")
		decoded = strings.ReplaceAll(decoded, "~0", "~")
		if n, err := strconv.Atoi(decoded); err == nil && isCanonicalInt(decoded, n) {
			segs = append(segs, n)
		} else {
			segs = append(segs, decoded)
		}
	}
	return segs, nil
}

// isCanonicalInt guards against treating e.g. "01" or "-0" as an array index:
// only the canonical base-10 rendering of n qualifies.
func isCanonicalInt(s string, n int) bool {
	return n >= 0 && strconv.Itoa(n) == s
}

// formatPointerSegments renders segments back into a JSON Pointer string
// rooted at "#", escaping "~" and "/" per RFC 6901.
func formatPointerSegments(segs []any) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, s := range segs {
		b.WriteByte('/')
		var str string
		switch v := s.(type) {
		case int:
			str = strconv.Itoa(v)
		case string:
			str = v
		default:
			str = ""
		}
		str = strings.ReplaceAll(str, "~", "~0")
		str = strings.ReplaceAll(str, "/", "~1")
		b.WriteString(str)
	}
	return b.String()
}
