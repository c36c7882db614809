// Package jsv implements a JSON Schema validator engine supporting the
// 2020-12 and Draft-7 dialects.
//
// Validation happens in two phases. First, a Resolver fetches and scans
// schema documents, and a Builder compiles every reachable sub-schema into
// an ordered list of vocabulary validators keyed by a canonical Key. Then a
// Validator walks a JSON instance against the compiled graph, threading a
// ValidationContext that tracks data/evaluation/schema paths, a dynamic
// scope stack, per-level evaluated-property/index sets, and a deferred
// cast stack. Errors are accumulated rather than short-circuited, so one
// run surfaces every failure.
//
// Format validation and codec selection are external collaborators behind
// the FormatValidator and Codec interfaces; jsv ships default
// implementations of both.
//
// Credit to https://github.com/santhosh-tekuri/jsonschema for the format
// validator implementations in formats.go.
package jsv
