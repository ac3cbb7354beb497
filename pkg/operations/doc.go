// Package operations implements the assistant's closed operation
// vocabulary over the fleet store.
//
// All operations are registered once at construction time; dispatch is a
// map lookup over a fixed set, so "operation not found" can only mean the
// classifier produced a name outside the vocabulary. Each definition
// declares its parameter schema (validated before invocation), its
// read/write/delete category, whether it needs a consequence check before
// execution, and whether it is idempotent, which is what decides if the
// executor may retry it.
//
// Operation outcomes are the tagged Result type: a result is either a
// success carrying data or a failure carrying an error, never both.
package operations
