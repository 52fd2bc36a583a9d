// Package engine registers derived query operations and runs them against
// a record store.
//
// An operation is declared once per entity with an identifier and an
// explicit argument list:
//
//	op, err := eng.Register(user, engine.Signature{
//		Name: "findByLastnameOrFirstnameLike",
//		Args: []param.Decl{{Type: "string"}, {Type: "string"}, {Type: param.TypePageable}},
//	})
//
// Registration parses the identifier, classifies the arguments, checks that
// the bindable argument count matches the leaves that consume one, and
// compiles the SQL. Every misconfiguration surfaces here, never on first
// invocation.
//
// Registered operations live in a process-wide copy-on-write cache keyed by
// entity and signature. Readers load the current map without locking.
// Concurrent first registrations of the same signature may parse twice; the
// first published result wins.
//
// Invoke binds call-time values to a fresh per-call value, so one Operation
// serves any number of concurrent calls. Sorting and paging are applied by
// the engine; cancellation is left to the Executor through ctx.
//
// Ad-hoc predicates built with the specification package run through
// FindAll, FindAllSorted and Count.
package engine
