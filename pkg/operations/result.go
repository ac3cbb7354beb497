package operations

// Result is the tagged outcome of one operation invocation. The fields are
// unexported so a success with an error (or a failure with data) cannot be
// constructed.
type Result struct {
	ok      bool
	message string
	data    map[string]any
	err     error
}

// OK builds a success result.
func OK(message string, data map[string]any) Result {
	return Result{ok: true, message: message, data: data}
}

// Fail builds a failure result.
func Fail(err error, message string) Result {
	return Result{ok: false, message: message, err: err}
}

// Success reports whether the operation succeeded.
func (r Result) Success() bool { return r.ok }

// Message is the human-readable summary of the outcome.
func (r Result) Message() string { return r.message }

// Data returns the result payload; nil for failures.
func (r Result) Data() map[string]any {
	if !r.ok {
		return nil
	}
	return r.data
}

// Err returns the failure cause; nil for successes.
func (r Result) Err() error {
	if r.ok {
		return nil
	}
	return r.err
}
