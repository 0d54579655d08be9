package asyncapi

import (
	"errors"
	"fmt"
)

// Configuration errors, returned synchronously at registration time and
// never routed through the error hook.
var (
	// ErrEmitModelConflict indicates DocEmit was called again for an event
	// with a model different from the one already registered.
	ErrEmitModelConflict = errors.New("event already registered with a different model")

	// ErrNilErrorHandler indicates OnErrorDefault was called with a nil hook.
	ErrNilErrorHandler = errors.New("error handler must not be nil")
)

// RequestValidationError reports an inbound payload that failed coercion
// against the declared request model. With no error hook installed the
// pipeline drops it and the handler is never invoked.
type RequestValidationError struct {
	Event string
	Model Model
	Err   error
}

func (e *RequestValidationError) Error() string {
	return fmt.Sprintf("validation error for incoming request %q: payload does not match %s: %v",
		e.Event, e.Model.Name(), e.Err)
}

func (e *RequestValidationError) Unwrap() error { return e.Err }

// ResponseValidationError reports a handler result whose runtime type does
// not match the declared response model.
type ResponseValidationError struct {
	Event string
	Model Model
}

func (e *ResponseValidationError) Error() string {
	return fmt.Sprintf("error validating response %q: data doesn't match the required datatype %s",
		e.Event, e.Model.Name())
}

// EmitValidationError reports an outbound payload whose runtime type does
// not match the model declared via DocEmit. Unlike request and response
// failures it is returned to the caller when no error hook is installed.
type EmitValidationError struct {
	Event string
	Model Model
}

func (e *EmitValidationError) Error() string {
	return fmt.Sprintf("error validating emit %q: data doesn't match the required datatype %s",
		e.Event, e.Model.Name())
}
