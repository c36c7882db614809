package jsv

import (
	"strconv"
	"strings"
)

// Key is the canonical identifier of a resolved resource: a pointer into a
// namespace, a named anchor, a named dynamic anchor, or a bare namespace
// (document root). Two refs that target the same resource share the same
// Key, and the compiled validator map (builder.go) is keyed by Key.
//
// Key is represented as an opaque string so it can be used directly as a Go
// map key; use the constructors below to build one and the accessor methods
// to decompose it rather than parsing the string form by hand.
type Key string

const (
	keyTagPointer       = "ptr"
	keyTagAnchor        = "anc"
	keyTagDynamicAnchor = "dyn"
	keyTagNamespace     = "ns"
	keySep              = "\x00"
)

// PointerKey builds the Key for a JSON-Pointer-addressed schema.
func PointerKey(ns Namespace, segs []any) Key {
	return Key(keyTagPointer + keySep + string(ns) + keySep + encodeSegments(segs))
}

// AnchorKey builds the Key for a named $anchor.
func AnchorKey(ns Namespace, name string) Key {
	return Key(keyTagAnchor + keySep + string(ns) + keySep + name)
}

// DynamicAnchorKey builds the Key for a named $dynamicAnchor.
func DynamicAnchorKey(ns Namespace, name string) Key {
	return Key(keyTagDynamicAnchor + keySep + string(ns) + keySep + name)
}

// NSKey builds the Key for the document root of a namespace.
func NSKey(ns Namespace) Key {
	return Key(keyTagNamespace + keySep + string(ns))
}

// RootKey is the Key of the anonymous root document.
var RootKey = NSKey(RootNS)

func (k Key) parts() (tag, ns, arg string) {
	p := strings.SplitN(string(k), keySep, 3)
	for len(p) < 3 {
		p = append(p, "")
	}
	return p[0], p[1], p[2]
}

// Namespace returns the namespace component of the Key.
func (k Key) Namespace() Namespace {
	_, ns, _ := k.parts()
	return Namespace(ns)
}

// IsPointer reports whether k addresses a JSON Pointer location.
func (k Key) IsPointer() bool {
	tag, _, _ := k.parts()
	return tag == keyTagPointer
}

// IsAnchor reports whether k addresses a static $anchor.
func (k Key) IsAnchor() bool {
	tag, _, _ := k.parts()
	return tag == keyTagAnchor
}

// IsDynamicAnchor reports whether k addresses a $dynamicAnchor.
func (k Key) IsDynamicAnchor() bool {
	tag, _, _ := k.parts()
	return tag == keyTagDynamicAnchor
}

// IsNamespaceRoot reports whether k addresses a namespace's document root.
func (k Key) IsNamespaceRoot() bool {
	tag, _, _ := k.parts()
	return tag == keyTagNamespace
}

// Name returns the anchor/dynamic-anchor name component, if any.
func (k Key) Name() string {
	tag, _, arg := k.parts()
	if tag == keyTagAnchor || tag == keyTagDynamicAnchor {
		return arg
	}
	return ""
}

// Segments returns the decoded pointer segments, if k is a pointer Key.
func (k Key) Segments() []any {
	tag, _, arg := k.parts()
	if tag != keyTagPointer {
		return nil
	}
	return decodeSegments(arg)
}

// keyFromRef derives the Key that a resolved Ref addresses. The namespace on
// ref must already have been finalized via resolution of any $id boundary.
func keyFromRef(ref Ref) Key {
	switch ref.Kind {
	case RefPointer:
		return PointerKey(ref.NS, ref.Segs)
	case RefAnchor:
		if ref.Dynamic {
			return DynamicAnchorKey(ref.NS, ref.Name)
		}
		return AnchorKey(ref.NS, ref.Name)
	default:
		return NSKey(ref.NS)
	}
}

func encodeSegments(segs []any) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		switch v := s.(type) {
		case int:
			parts[i] = "i" + strconv.Itoa(v)
		case string:
			parts[i] = "s" + strings.ReplaceAll(v, keySep, "")
		default:
			parts[i] = "s"
		}
	}
	return strings.Join(parts, "/")
}

func decodeSegments(encoded string) []any {
	if encoded == "" {
		return nil
	}
	raw := strings.Split(encoded, "/")
	segs := make([]any, len(raw))
	for i, s := range raw {
		if len(s) == 0 {
			continue
		}
		switch s[0] {
		case 'i':
			if n, err := strconv.Atoi(s[1:]); err == nil {
				segs[i] = n
				continue
			}
			segs[i] = s[1:]
		case 's':
			segs[i] = s[1:]
		}
	}
	return segs
}
