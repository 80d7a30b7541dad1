// Package errs defines the error taxonomy shared by the domain services.
package errs

import "fmt"

// ValidationError reports domain data that fails a business validation rule,
// for example a future-dated visit or out-of-sequence badge dates. Fields maps
// a field name to its error messages so handlers can surface them per field.
type ValidationError struct {
	Message string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(message string) *ValidationError {
	return &ValidationError{Message: message, Fields: map[string][]string{}}
}

func NewFieldValidation(field, message string) *ValidationError {
	return &ValidationError{
		Message: fmt.Sprintf("%s: %s", field, message),
		Fields:  map[string][]string{field: {message}},
	}
}

// BusinessLogicError reports an action attempted on an object in an invalid
// state, as opposed to a plain field validation failure.
type BusinessLogicError struct {
	Message string
}

func (e *BusinessLogicError) Error() string { return e.Message }

func NewBusinessLogic(message string) *BusinessLogicError {
	return &BusinessLogicError{Message: message}
}
