/*
Package agent is the request-processing pipeline of the operations
assistant.

A turn flows through six stages: normalize (multimodal input to a
comprehension record), classify (comprehension to an operation from the
closed vocabulary), evaluate (consequence analysis for booking-affecting
operations), confirm (suspension gate for high-risk actions), execute
(registry dispatch with bounded retry) and format (user-facing text,
category and UI hint).

High-risk operations suspend at the gate: the session persists the pending
action and the pipeline answers with a confirmation request. The next turn
for that session is interpreted as the decision and re-enters at the
executor (confirmed) or the formatter (declined); a reply that is neither
is treated as an implicit decline followed by fresh classification. The
suspension survives process restarts because it lives in the session
store, not in a goroutine.
*/
package agent
