package jsv

import (
	"sort"

	i18n "github.com/kaptinlin/go-i18n"
)

// Error is one validation failure accumulated during a run. Errors are
// neither sorted nor merged during validation (spec §4.7); grouping and
// formatting happen once, at the end of a run, in ErrorFormatter.Format.
type Error struct {
	Kind       string
	Data       any
	Args       map[string]any
	DataPath   []any
	EvalPath   []any
	SchemaPath []any
	Formatter  Vocabulary // the module whose FormatError renders this error
}

// ValidationError wraps the accumulated error list of a failed run.
type ValidationError struct {
	Errors []*Error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "jsv: validation failed"
	}
	return "jsv: validation failed: " + e.Errors[0].Kind
}

// ErrorDetail is one formatted entry in a normalized error report.
type ErrorDetail struct {
	Valid            bool           `json:"valid"`
	InstanceLocation string         `json:"instanceLocation"`
	EvaluationPath   string         `json:"evaluationPath"`
	SchemaLocation   string         `json:"schemaLocation"`
	Errors           []*ErrorUnit   `json:"errors"`
}

// ErrorUnit is a single (kind, message) pair within an ErrorDetail. Details
// is part of the output shape but ErrorFormatter.Format leaves it empty: the
// errors of oneOf/anyOf/contains branches are not carried into the report.
type ErrorUnit struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details []*ErrorDetail `json:"details,omitempty"`
}

// NormalizedReport is the top-level JSON-encodable shape of spec §6.
type NormalizedReport struct {
	Valid   bool           `json:"valid"`
	Details []*ErrorDetail `json:"details,omitempty"`
}

// ErrorFormatter groups, sorts, and normalizes a flat error list into the
// standard output shape, optionally localizing messages via an i18n bundle.
type ErrorFormatter struct {
	SortDescending bool
	Localizer      *i18n.Localizer
}

// Format implements spec §4.7: flatten (already flat in this
// implementation), group by (data_path, eval_path, schema_path), sort by
// data_path, and format each group via its originating module's FormatError.
func (f *ErrorFormatter) Format(errs []*Error) *NormalizedReport {
	if len(errs) == 0 {
		return &NormalizedReport{Valid: true}
	}

	type groupKey struct{ data, eval, schema string }
	groups := map[groupKey]*ErrorDetail{}
	order := []groupKey{}

	for _, e := range errs {
		gk := groupKey{
			data:   formatPointerSegments(e.DataPath),
			eval:   formatPointerSegments(e.EvalPath),
			schema: formatPointerSegments(e.SchemaPath),
		}
		detail, ok := groups[gk]
		if !ok {
			detail = &ErrorDetail{
				Valid:            false,
				InstanceLocation: gk.data,
				EvaluationPath:   gk.eval,
				SchemaLocation:   gk.schema,
			}
			groups[gk] = detail
			order = append(order, gk)
		}
		detail.Errors = append(detail.Errors, f.formatUnit(e))
	}

	sort.SliceStable(order, func(i, j int) bool {
		if f.SortDescending {
			return order[i].data > order[j].data
		}
		return order[i].data < order[j].data
	})

	out := make([]*ErrorDetail, 0, len(order))
	for _, gk := range order {
		out = append(out, groups[gk])
	}
	return &NormalizedReport{Valid: false, Details: out}
}

func (f *ErrorFormatter) formatUnit(e *Error) *ErrorUnit {
	message := f.messageFor(e)
	return &ErrorUnit{Kind: e.Kind, Message: message}
}

func (f *ErrorFormatter) messageFor(e *Error) string {
	if f.Localizer != nil {
		if msg := f.Localizer.Get(e.Kind, i18n.Vars(e.Args)); msg != "" && msg != e.Kind {
			return msg
		}
	}
	if e.Formatter != nil {
		return e.Formatter.FormatError(e.Kind, e.Args, e.Data)
	}
	return defaultMessageFor(e.Kind, e.Args)
}

// defaultMessageFor renders a plain English fallback when no formatter
// module produced this error (e.g. boolean_schema, ref_mismatch) and no
// localizer is configured.
func defaultMessageFor(kind string, args map[string]any) string {
	template, ok := defaultMessages[kind]
	if !ok {
		return kind
	}
	return replace(template, args)
}

var defaultMessages = map[string]string{
	KindBooleanSchema: "schema is false: no value is valid",
	KindRef:           "reference {key} could not be resolved",
	KindDynamicRef:    "dynamic reference {key} could not be resolved",
}

// Localize renders a NormalizedReport's messages under localizer instead of
// the default English formatting, without re-running validation.
func (rep *NormalizedReport) Localize(errs []*Error, formatter *ErrorFormatter, localizer *i18n.Localizer) *NormalizedReport {
	cp := *formatter
	cp.Localizer = localizer
	return cp.Format(errs)
}
