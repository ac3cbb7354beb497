// Package domain holds the core types of the Movi operations assistant:
// the per-turn pipeline state, the persisted conversation session, the
// fleet entities the assistant operates on, and the sentinel errors shared
// by stores and pipeline stages.
//
// The package is intentionally free of I/O and third-party dependencies so
// that every adapter (redis, sqlite, HTTP, LLM clients) can depend on it
// without cycles.
package domain
