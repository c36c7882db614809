package jsv

import "sort"

// FormatValidator is the external collaborator behind string format
// checking/coercion. Plug-in modules are tried in registration order; the
// first advertising a given format handles it.
type FormatValidator interface {
	// SupportedFormats lists the format names this validator handles.
	SupportedFormats() []string
	// AppliesToType reports whether format applies to values shaped like
	// data; the builtin default considers all formats string-only.
	AppliesToType(format string, data any) bool
	// ValidateCast checks data against format, optionally returning a richer
	// coerced value (e.g. a parsed date) when casting is enabled; otherwise
	// it returns the input unchanged on success.
	ValidateCast(format string, data any) (any, error)
}

// defaultFormatValidator wraps the Formats registry in formats.go as a
// FormatValidator. It never casts: ValidateCast returns the input as-is on
// success, matching the builtin's string-only AppliesToType contract.
type defaultFormatValidator struct {
	fns map[string]func(interface{}) bool
}

// DefaultFormatValidator returns the builtin FormatValidator backed by the
// RFC-grounded checks in formats.go.
func DefaultFormatValidator() FormatValidator {
	return &defaultFormatValidator{fns: Formats}
}

// SupportedFormats implements FormatValidator.
func (d *defaultFormatValidator) SupportedFormats() []string {
	names := make([]string, 0, len(d.fns))
	for name := range d.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AppliesToType implements FormatValidator: the builtin checks are all
// string-only.
func (d *defaultFormatValidator) AppliesToType(format string, data any) bool {
	_, ok := data.(string)
	return ok
}

// ValidateCast implements FormatValidator.
func (d *defaultFormatValidator) ValidateCast(format string, data any) (any, error) {
	fn, ok := d.fns[format]
	if !ok {
		return data, nil
	}
	if !fn(data) {
		return nil, ErrFormatMismatch
	}
	return data, nil
}

// chainFormatValidator tries a list of FormatValidators in registration
// order, using the first one that advertises support for the requested
// format; AppliesToType is not consulted when choosing it.
type chainFormatValidator struct {
	chain []FormatValidator
}

// NewFormatValidatorChain builds a FormatValidator trying each of chain in
// order.
func NewFormatValidatorChain(chain ...FormatValidator) FormatValidator {
	return &chainFormatValidator{chain: chain}
}

func (c *chainFormatValidator) SupportedFormats() []string {
	seen := map[string]bool{}
	var out []string
	for _, fv := range c.chain {
		for _, f := range fv.SupportedFormats() {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}

func (c *chainFormatValidator) AppliesToType(format string, data any) bool {
	for _, fv := range c.chain {
		if contains(fv.SupportedFormats(), format) {
			return fv.AppliesToType(format, data)
		}
	}
	return false
}

func (c *chainFormatValidator) ValidateCast(format string, data any) (any, error) {
	for _, fv := range c.chain {
		if contains(fv.SupportedFormats(), format) {
			return fv.ValidateCast(format, data)
		}
	}
	return data, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
