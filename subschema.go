package jsv

// CompiledValidator is the value type stored in the Key → validator map
// produced by the Builder: either a *Subschema, a *BooleanSchema, or an
// *Alias pointing at another Key holding the canonical compiled form.
type CompiledValidator interface {
	compiledValidator()
}

// validatorEntry pairs a vocabulary module with the finalized state it
// produced for one compiled Subschema.
type validatorEntry struct {
	module Vocabulary
	state  any
}

// Subschema is the compiled form of a single schema object: an ordered list
// of vocabulary validator entries (run in ascending-priority order) plus an
// optional cast descriptor lifted out of the Cast vocabulary's contribution.
type Subschema struct {
	validators []validatorEntry
	SchemaPath []any
	Cast       *castDescriptor
}

func (*Subschema) compiledValidator() {}

// BooleanSchema is the compiled form of the literal schemas true/false: a
// constant accept or reject.
type BooleanSchema struct {
	Valid      bool
	SchemaPath []any
}

func (*BooleanSchema) compiledValidator() {}

// Alias is a CompiledValidator entry standing in for another Key holding the
// canonical compiled form, mirroring the resolver's alias cache entries so a
// re-usable subschema staged under more than one name compiles once.
type Alias struct {
	Target Key
}

func (*Alias) compiledValidator() {}
