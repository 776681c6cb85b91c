package main

import "errors"

// InsufficientDataError marks a patient-measure record that cannot be
// measured at all: no fills, or no fill inside the measurement window.
// Consumers must treat this as "not computable", never as 0% adherence.
type InsufficientDataError struct {
	msg string
}

func NewInsufficientDataError(msg string) InsufficientDataError {
	return InsufficientDataError{msg: msg}
}

func (e InsufficientDataError) Error() string { return e.msg }

// InvalidInputError rejects a single record loudly: negative refills
// remaining, missing window, or fill dates outside a sane range.
type InvalidInputError struct {
	msg string
}

func NewInvalidInputError(msg string) InvalidInputError {
	return InvalidInputError{msg: msg}
}

func (e InvalidInputError) Error() string { return e.msg }

func isInsufficientData(err error) bool {
	var target InsufficientDataError
	return errors.As(err, &target)
}

func isInvalidInput(err error) bool {
	var target InvalidInputError
	return errors.As(err, &target)
}

// Short machine-readable kind used in batch results and audit rows
func errorKind(err error) string {
	switch {
	case isInsufficientData(err):
		return "insufficient_data"
	case isInvalidInput(err):
		return "invalid_input"
	default:
		return "internal"
	}
}
