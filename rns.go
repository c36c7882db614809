package jsv

import (
	"net/url"
	"strings"
)

// Namespace is the canonical absolute URI of a schema document, fragment
// stripped, or the sentinel RootNS for the anonymous top document.
type Namespace string

// RootNS is the sentinel namespace for the anonymous root document.
const RootNS Namespace = ""

// IsRoot reports whether ns is the anonymous root namespace.
func (ns Namespace) IsRoot() bool {
	return ns == RootNS
}

func (ns Namespace) String() string {
	if ns.IsRoot() {
		return "root"
	}
	return string(ns)
}

// deriveNamespace computes derive(base, rel) per spec §3: the RFC-3986 merge
// of a relative reference R onto a base namespace B, except that:
//   - merging a pure "#fragment" onto an opaque (non-hierarchical) URI
//     without a host preserves B;
//   - merging any relative non-fragment reference onto root is an error;
//   - an absolute R replaces B outright.
func deriveNamespace(base Namespace, rel string) (Namespace, error) {
	baseURI, _ := splitRef(string(base))
	relURI, relFrag := splitRef(rel)

	if relURI == "" {
		// Pure fragment (or empty string): stays on base.
		return base, nil
	}

	if isAbsoluteURI(relURI) {
		return Namespace(relURI), nil
	}

	if base.IsRoot() {
		return RootNS, &BuildError{
			Reason: ReasonInvalidNSMerge,
			Action: "derive",
		}
	}

	parsedBase, err := url.Parse(baseURI)
	if err != nil {
		return RootNS, &BuildError{Reason: ReasonInvalidNSMerge, Action: "derive"}
	}
	if parsedBase.Scheme == "" || parsedBase.Host == "" {
		// Opaque base without a host: a non-fragment relative reference
		// cannot be merged onto it meaningfully, so it is preserved as-is.
		return base, nil
	}

	parsedRel, err := url.Parse(relURI)
	if err != nil {
		return RootNS, &BuildError{Reason: ReasonInvalidNSMerge, Action: "derive"}
	}
	merged := parsedBase.ResolveReference(parsedRel)
	return Namespace(merged.String()), nil
}

// stripFragment removes any "#..." suffix from a URI string.
func stripFragment(uri string) string {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i]
	}
	return uri
}
