package jsv

// castStackEntry is the {depth, cast} pair described in spec §4.6: at most
// one cast applies at a given data path even though nested branches may each
// attempt to register one.
type castStackEntry struct {
	depth int
	cast  CastFunc
}

// ValidationContext is the single mutable object threaded through one
// validate call. It is single-use per call and owns all mutable per-run
// state; implementations may copy it on write rather than mutate in place.
type ValidationContext struct {
	Validators map[Key]CompiledValidator

	DataPath   []any // segments into the instance, outermost first
	EvalPath   []any // evaluation-path segments, outermost first
	SchemaPath []any // segments into the current schema, outermost first

	Scope []Namespace // stack of enclosing namespaces, top = innermost

	Evaluated []*evaluatedFrame // stack; head = current object/array frame

	Errors []*Error

	CastStacks map[string][]castStackEntry // keyed by formatted data path

	Opts *ValidateOptions
}

// ValidateOptions configures a Validate call.
type ValidateOptions struct {
	Cast bool
	// SortDescending reverses the default ascending data-path error sort.
	SortDescending bool
	Formatter      *ErrorFormatter
}

type evaluatedFrame struct {
	properties map[string]bool
	indices    map[int]bool
}

func newEvaluatedFrame() *evaluatedFrame {
	return &evaluatedFrame{properties: map[string]bool{}, indices: map[int]bool{}}
}

// newRootContext builds the initial ValidationContext for a top-level
// Validate call.
func newRootContext(validators map[Key]CompiledValidator, rootNS Namespace, opts *ValidateOptions) *ValidationContext {
	if opts == nil {
		opts = &ValidateOptions{}
	}
	return &ValidationContext{
		Validators: validators,
		Scope:      []Namespace{rootNS},
		Evaluated:  []*evaluatedFrame{newEvaluatedFrame()},
		CastStacks: map[string][]castStackEntry{},
		Opts:       opts,
	}
}

// shallowCopy produces a context sharing the same Validators, Opts and
// CastStacks map but with independent path/scope/evaluated slices, so path
// mutation in one branch does not leak across sibling branches
// (validate_as/validate_detach semantics, spec §4.3). ValidateAs and
// ValidateDetach then give the copy a fresh CastStacks map of its own.
func (ctx *ValidationContext) shallowCopy() *ValidationContext {
	cp := &ValidationContext{
		Validators: ctx.Validators,
		DataPath:   append([]any{}, ctx.DataPath...),
		EvalPath:   append([]any{}, ctx.EvalPath...),
		SchemaPath: append([]any{}, ctx.SchemaPath...),
		Scope:      append([]Namespace{}, ctx.Scope...),
		Evaluated:  append([]*evaluatedFrame{}, ctx.Evaluated...),
		CastStacks: ctx.CastStacks,
		Opts:       ctx.Opts,
	}
	return cp
}

func (ctx *ValidationContext) currentFrame() *evaluatedFrame {
	return ctx.Evaluated[len(ctx.Evaluated)-1]
}

func (ctx *ValidationContext) markPropertyEvaluated(name string) {
	ctx.currentFrame().properties[name] = true
}

func (ctx *ValidationContext) markIndexEvaluated(i int) {
	ctx.currentFrame().indices[i] = true
}

func (ctx *ValidationContext) addError(kind string, data any, args map[string]any, formatter Vocabulary) {
	ctx.Errors = append(ctx.Errors, &Error{
		Kind:       kind,
		Data:       data,
		Args:       args,
		DataPath:   append([]any{}, ctx.DataPath...),
		EvalPath:   append([]any{}, ctx.EvalPath...),
		SchemaPath: append([]any{}, ctx.SchemaPath...),
		Formatter:  formatter,
	})
}

func (ctx *ValidationContext) currentScope() Namespace {
	return ctx.Scope[len(ctx.Scope)-1]
}
