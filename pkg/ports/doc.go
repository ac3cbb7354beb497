// Package ports defines the driven-side interfaces of the assistant:
// session persistence, language-model completion, multimodal comprehension,
// fleet lookups and distributed locking. Adapters under internal/adapters
// implement them; the pipeline only ever sees these contracts.
//
// The package also ships a reusable contract test suite
// (RunSessionStoreContract) so every SessionStore implementation is held to
// the same behavior.
package ports
