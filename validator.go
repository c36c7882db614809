package jsv

// NewValidationContext builds the root ValidationContext for a Validate call
// against a compiled {Key → validator} map.
func NewValidationContext(validators map[Key]CompiledValidator, rootNS Namespace, opts *ValidateOptions) *ValidationContext {
	return newRootContext(validators, rootNS, opts)
}

// Validate is the top-level dispatch: BooleanSchema, Alias, or Subschema.
func Validate(data any, v CompiledValidator, ctx *ValidationContext) (any, *ValidationContext) {
	switch val := v.(type) {
	case *BooleanSchema:
		ctx.SchemaPath = val.SchemaPath
		if !val.Valid {
			ctx.addError(KindBooleanSchema, data, nil, nil)
		}
		return data, ctx
	case *Alias:
		target, ok := ctx.Validators[val.Target]
		if !ok {
			ctx.addError(KindRef, data, map[string]any{"key": string(val.Target)}, nil)
			return data, ctx
		}
		return Validate(data, target, ctx)
	case *Subschema:
		return validateSubschema(data, val, ctx)
	default:
		return data, ctx
	}
}

// validateSubschema runs every vocabulary validator entry in ascending-
// priority order, collecting errors without short-circuiting, then (on
// success) applies any deferred cast (spec §4.3 "Subschema execution").
func validateSubschema(data any, sub *Subschema, ctx *ValidationContext) (any, *ValidationContext) {
	ctx.SchemaPath = sub.SchemaPath
	pushCast(ctx, sub.Cast)
	startErrs := len(ctx.Errors)
	value := data
	for _, entry := range sub.validators {
		value, ctx = entry.module.Validate(value, entry.state, ctx)
	}
	if len(ctx.Errors) > startErrs {
		// Still balance the cast stack even on failure; no value is applied.
		_, _ = popCast(ctx, value)
		return value, ctx
	}
	cast, err := popCast(ctx, value)
	if err != nil {
		ctx.addError(KindFormat, data, map[string]any{"cast_error": err.Error()}, nil)
		return value, ctx
	}
	return cast, ctx
}

// ValidateByKey looks up key in ctx.Validators and validates data against it,
// the common entry point for vocabulary modules dispatching into a nested
// compiled schema reached by Key.
func ValidateByKey(data any, key Key, ctx *ValidationContext) (any, *ValidationContext) {
	v, ok := ctx.Validators[key]
	if !ok {
		ctx.addError(KindRef, data, map[string]any{"key": string(key)}, nil)
		return data, ctx
	}
	return Validate(data, v, ctx)
}

// ValidateIn descends into a named child of an object/array: pushes segKey
// onto DataPath and a fresh evaluated frame, validates, appends the child's
// errors to ctx and, only when the child produced none, records segKey as
// evaluated in ctx's current frame.
func ValidateIn(data any, segKey any, evalSeg any, v CompiledValidator, ctx *ValidationContext) (any, *ValidationContext) {
	inner := ctx.shallowCopy()
	inner.DataPath = append(inner.DataPath, segKey)
	inner.EvalPath = append(inner.EvalPath, evalSeg)
	inner.Evaluated = append(inner.Evaluated, newEvaluatedFrame())
	inner.Errors = nil

	value, inner := Validate(data, v, inner)

	ctx.Errors = append(ctx.Errors, inner.Errors...)
	if len(inner.Errors) == 0 {
		switch s := segKey.(type) {
		case string:
			ctx.markPropertyEvaluated(s)
		case int:
			ctx.markIndexEvaluated(s)
		}
	}
	return value, ctx
}

// ValidateAs validates the same data with a keyword-scope shift (e.g. then,
// allOf[i]): a fresh evaluated frame and fresh cast stack, merged back into
// the surrounding evaluated set and cast stacks on success.
func ValidateAs(data any, evalSeg any, v CompiledValidator, ctx *ValidationContext) (any, *ValidationContext) {
	inner := ctx.shallowCopy()
	if evalSeg != nil {
		inner.EvalPath = append(inner.EvalPath, evalSeg)
	}
	inner.Evaluated = append(inner.Evaluated, newEvaluatedFrame())
	inner.CastStacks = map[string][]castStackEntry{}
	inner.Errors = nil

	value, inner := Validate(data, v, inner)

	ctx.Errors = append(ctx.Errors, inner.Errors...)
	if len(inner.Errors) == 0 {
		mergeEvaluatedInto(ctx.currentFrame(), inner.currentFrame())
		ctx.CastStacks = mergeTrackedCasts(ctx.CastStacks, inner.CastStacks)
	}
	return value, ctx
}

// ValidateDetach is like ValidateAs but never merges the evaluated set back
// (used by keywords such as not, whose sub-validation must not count as
// "evaluated"). Used also by if and by every oneOf/anyOf branch; those two
// keywords merge the evaluated set of accepting branches themselves.
func ValidateDetach(data any, evalSeg any, v CompiledValidator, ctx *ValidationContext) (any, *ValidationContext) {
	inner := ctx.shallowCopy()
	if evalSeg != nil {
		inner.EvalPath = append(inner.EvalPath, evalSeg)
	}
	inner.Evaluated = append(inner.Evaluated, newEvaluatedFrame())
	inner.CastStacks = map[string][]castStackEntry{}
	inner.Errors = nil

	value, inner := Validate(data, v, inner)
	return value, inner
}

func mergeEvaluatedInto(dst, src *evaluatedFrame) {
	for k := range src.properties {
		dst.properties[k] = true
	}
	for i := range src.indices {
		dst.indices[i] = true
	}
}

// ValidateRef enters the scope of key's namespace (pushing it if different
// from the current top), validates against the referenced compiled entry,
// merges evaluated/cast tracking back, and restores the scope stack.
func ValidateRef(data any, key Key, evalSeg any, ctx *ValidationContext) (any, *ValidationContext) {
	ns := key.Namespace()
	pushed := false
	if ctx.currentScope() != ns {
		ctx.Scope = append(ctx.Scope, ns)
		pushed = true
	}
	target, ok := lookupForRef(ctx, key)
	if !ok {
		kind := KindRef
		if key.IsDynamicAnchor() {
			kind = KindDynamicRef
		}
		ctx.addError(kind, data, map[string]any{"key": string(key)}, nil)
		if pushed {
			ctx.Scope = ctx.Scope[:len(ctx.Scope)-1]
		}
		return data, ctx
	}
	value, ctx2 := ValidateAs(data, evalSeg, target, ctx)
	if pushed {
		ctx2.Scope = ctx2.Scope[:len(ctx2.Scope)-1]
	}
	return value, ctx2
}

func lookupForRef(ctx *ValidationContext, key Key) (CompiledValidator, bool) {
	if key.IsDynamicAnchor() {
		if resolved, ok := resolveDynamicRef(ctx, key); ok {
			return resolved, true
		}
	}
	v, ok := ctx.Validators[key]
	return v, ok
}

// resolveDynamicRef implements spec §4.3 dynamic-ref resolution: walk the
// scope stack outermost to innermost looking for any
// {dynamic_anchor, scope_ns, name} present in Validators; the outermost
// match wins. If none, the caller falls back to the static anchor lookup.
func resolveDynamicRef(ctx *ValidationContext, key Key) (CompiledValidator, bool) {
	name := key.Name()
	for _, ns := range ctx.Scope {
		candidate := DynamicAnchorKey(ns, name)
		if v, ok := ctx.Validators[candidate]; ok {
			return v, true
		}
	}
	return nil, false
}

// Reduce iterates items without short-circuiting: errors from any iteration
// accumulate in ctx, and the returned ctx is an error iff any iteration
// produced one.
func Reduce(items []any, ctx *ValidationContext, fn func(item any, ctx *ValidationContext) *ValidationContext) *ValidationContext {
	for _, item := range items {
		ctx = fn(item, ctx)
	}
	return ctx
}
