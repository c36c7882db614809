package jsv

// CastFunc transforms an already-validated value into its final cast form.
type CastFunc func(data any) (any, error)

// castDescriptor is the single cast a compiled Subschema may carry.
type castDescriptor struct {
	fn CastFunc
}

// CastVocabulary is the internal vocabulary prepended ahead of every other
// module during compilation (spec §4.2 step 1). It claims no schema
// keywords itself: other vocabularies register a cast for the subschema
// currently being compiled via Builder.RegisterCast, and the builder lifts
// the registered descriptor into Subschema.Cast once compilation of that
// subschema finishes (spec §4.2 step 4). CastVocabulary's Validate is never
// invoked through the normal validator list; the deferred cast-stack
// push/pop around subschema execution (below) applies it directly.
type CastVocabulary struct{}

// Priority implements Vocabulary. orderedModules always places Cast first,
// whatever the other modules' priorities.
func (CastVocabulary) Priority() int { return -1 }

// InitState implements Vocabulary.
func (CastVocabulary) InitState(*BuildOptions) any { return nil }

// HandleKeyword implements Vocabulary: Cast never claims a keyword pair
// directly; casts are registered via the Builder.RegisterCast side channel.
func (CastVocabulary) HandleKeyword(kw string, value any, state any, b *Builder, raw map[string]any) (any, bool, error) {
	return nil, false, nil
}

// FinalizeValidators implements Vocabulary: Cast contributes nothing to the
// ordinary validators list; its payload is lifted separately.
func (CastVocabulary) FinalizeValidators(state any) (any, bool, error) {
	return nil, false, nil
}

// Validate implements Vocabulary; unreachable in normal operation.
func (CastVocabulary) Validate(data any, state any, ctx *ValidationContext) (any, *ValidationContext) {
	return data, ctx
}

// FormatError implements Vocabulary.
func (CastVocabulary) FormatError(kind string, args map[string]any, data any) string {
	return "cast failed"
}

// dataPathKey renders a ValidationContext's current data path into a stable
// map key for CastStacks.
func dataPathKey(path []any) string {
	return formatPointerSegments(path)
}

// pushCast implements the enter-subschema half of spec §4.6: if the stack
// already holds a non-nil cast at this data path, the new push is silently
// shadowed (the outermost registration wins), but depth still increments so
// the matching pop is balanced.
func pushCast(ctx *ValidationContext, desc *castDescriptor) {
	if !ctx.Opts.Cast {
		return
	}
	key := dataPathKey(ctx.DataPath)
	stack := ctx.CastStacks[key]
	entry := castStackEntry{depth: len(stack)}
	if len(stack) == 0 || stack[len(stack)-1].cast == nil {
		if desc != nil {
			entry.cast = desc.fn
		}
	}
	ctx.CastStacks[key] = append(stack, entry)
}

// popCast implements the leave-subschema half of spec §4.6: the topmost
// (depth 0) pop applies the remembered cast; intermediate pops only
// decrement depth.
func popCast(ctx *ValidationContext, value any) (any, error) {
	if !ctx.Opts.Cast {
		return value, nil
	}
	key := dataPathKey(ctx.DataPath)
	stack := ctx.CastStacks[key]
	if len(stack) == 0 {
		return value, nil
	}
	top := stack[len(stack)-1]
	ctx.CastStacks[key] = stack[:len(stack)-1]
	if len(ctx.CastStacks[key]) == 0 {
		delete(ctx.CastStacks, key)
	}
	if top.depth == 0 && top.cast != nil {
		return top.cast(value)
	}
	return value, nil
}

// mergeTrackedCasts implements validate_as's cast_stacks merge (spec §4.6):
// for each data path, prefer the outer entry; when the outer is {n, nil} and
// the inner carries a concrete cast, adopt the inner's.
func mergeTrackedCasts(outer, inner map[string][]castStackEntry) map[string][]castStackEntry {
	for path, innerStack := range inner {
		outerStack, ok := outer[path]
		if !ok {
			outer[path] = innerStack
			continue
		}
		if len(outerStack) > 0 && outerStack[len(outerStack)-1].cast == nil {
			if len(innerStack) > 0 && innerStack[len(innerStack)-1].cast != nil {
				outer[path] = innerStack
			}
		}
	}
	return outer
}
