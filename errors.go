package jsv

import "errors"

// Build error reasons (fatal at build time; carried as BuildError.Reason).
const (
	ReasonInvalidSubSchema    = "invalid_sub_schema"
	ReasonInvalidNSMerge      = "invalid_ns_merge"
	ReasonUnknownVocabulary   = "unknown_vocabulary"
	ReasonUndefinedVocabulary = "undefined_vocabulary"
	ReasonResolverError       = "resolver_error"
	ReasonDuplicateResolution = "duplicate_resolution"
	ReasonKeyExists           = "key_exists"
	ReasonUnresolved          = "unresolved"
	ReasonPointerError        = "pointer_error"
	ReasonInvalidDocPath      = "invalid_docpath"
	ReasonBadReturnFromVocab  = "bad_return_from_vocabulary"
)

// BuildError is raised for any vocabulary-level or resolver-level failure
// encountered while compiling a schema. It carries the schema path of the
// subschema being built when the failure occurred.
type BuildError struct {
	Reason    string
	Action    string
	BuildPath []any
}

func (e *BuildError) Error() string {
	return replace("build failed: {reason} ({action}) at {path}", map[string]interface{}{
		"reason": e.Reason,
		"action": e.Action,
		"path":   e.BuildPath,
	})
}

// NewBuildError constructs a BuildError for the given reason/action at path.
func NewBuildError(reason, action string, buildPath []any) *BuildError {
	return &BuildError{Reason: reason, Action: action, BuildPath: buildPath}
}

// Sentinel errors surfaced by low-level helpers below BuildError granularity,
// or returned directly by package-level convenience functions.
var (
	ErrNoBackendRegistered  = errors.New("jsv: no resolver backend registered")
	ErrBooleanSchemaAtRoot  = errors.New("jsv: boolean schema not allowed at document root")
	ErrUnsupportedEncoding  = errors.New("jsv: unsupported content encoding")
	ErrUnsupportedMediaType = errors.New("jsv: unsupported content media type")
	ErrRatConversion        = errors.New("jsv: numeric value could not be converted to a rational")
	ErrUnrepresentableValue = errors.New("jsv: value cannot be normalized to pure JSON")
	ErrNonStringMapKey      = errors.New("jsv: map key cannot be coerced to a string")
	ErrFormatMismatch       = errors.New("jsv: value does not match format")

	// ErrUnsupportedTypeForRat and ErrFailedToConvertToRat back Rat's
	// json.Marshaler/Unmarshaler implementation (rat.go).
	ErrUnsupportedTypeForRat = errors.New("jsv: unsupported type for rational conversion")
	ErrFailedToConvertToRat  = errors.New("jsv: failed to convert value to rational")

	// ErrIPv6AddressNotEnclosed and ErrInvalidIPv6Address back urlParse in
	// formats.go.
	ErrIPv6AddressNotEnclosed = errors.New("jsv: IPv6 host is not enclosed in brackets")
	ErrInvalidIPv6Address     = errors.New("jsv: invalid IPv6 address")
)

// Validation error kinds (accumulated during validation, never fatal on their
// own; see ValidationError and the normalized output in errormodel.go).
const (
	KindBooleanSchema         = "boolean_schema"
	KindType                  = "type"
	KindEnum                  = "enum"
	KindConst                 = "const"
	KindMultipleOf            = "multipleOf"
	KindMaximum               = "maximum"
	KindExclusiveMaximum      = "exclusiveMaximum"
	KindMinimum               = "minimum"
	KindExclusiveMinimum      = "exclusiveMinimum"
	KindMaxLength             = "maxLength"
	KindMinLength             = "minLength"
	KindPattern               = "pattern"
	KindMaxItems              = "maxItems"
	KindMinItems              = "minItems"
	KindUniqueItems           = "uniqueItems"
	KindMaxContains           = "maxContains"
	KindMinContains           = "minContains"
	KindMaxProperties         = "maxProperties"
	KindMinProperties         = "minProperties"
	KindRequired              = "required"
	KindDependentRequired     = "dependentRequired"
	KindAdditionalProperties  = "additionalProperties"
	KindPropertyNames         = "propertyNames"
	KindUnevaluatedProperties = "unevaluatedProperties"
	KindUnevaluatedItems      = "unevaluatedItems"
	KindAllOf                 = "allOf"
	KindAnyOf                 = "anyOf"
	KindOneOfNone             = "oneOf_none"
	KindOneOfMulti            = "oneOf_multi"
	KindNot                   = "not"
	KindRef                   = "ref_mismatch"
	KindDynamicRef            = "dynamic_ref_mismatch"
	KindContains              = "contains"
	KindContentEncoding       = "contentEncoding"
	KindContentMediaType      = "contentMediaType"
	KindContentSchema         = "contentSchema"
	KindFormat                = "format"
	KindDependentSchemas      = "dependentSchemas"
)
