/*
Package session serializes concurrent access to conversation sessions.

The manager wraps a SessionStore with per-session locks so that a pending
confirmation and a new message for the same session cannot interleave. An
optional distributed locker extends the guarantee across replicas, and a
background sweep evicts sessions idle past their TTL.
*/
package session
