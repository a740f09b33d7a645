package errext

import "errors"

// Format extracts the display text and structured fields (hint, etc.) for
// err the way a host would render it: an error carrying a stack trace
// (HasStackTrace) prints the trace as the message, otherwise err.Error().
func Format(err error) (errorText string, fields map[string]interface{}) {
	if err == nil {
		return "", nil
	}

	var withStack HasStackTrace
	if errors.As(err, &withStack) {
		errorText = withStack.StackTrace()
	} else {
		errorText = err.Error()
	}

	var withHint HasHint
	if errors.As(err, &withHint) {
		fields = map[string]interface{}{"hint": withHint.Hint()}
	}

	return errorText, fields
}
