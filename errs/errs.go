// Package errs defines the error taxonomy shared by every package in the
// repository. Errors are typed so callers can distinguish malformed data
// from structural misconfiguration and from use-before-ready mistakes.
package errs

import "fmt"

// InvalidInput reports malformed data: NaN or Inf values, length
// mismatches, empty or ragged tables.
type InvalidInput struct {
	Reason string
}

func (e InvalidInput) Error() string {
	return "invalid input: " + e.Reason
}

// Configuration reports a structurally invalid option: an unknown variant
// name, an empty search-space dimension, a fold count incompatible with
// the sample count.
type Configuration struct {
	Option string
	Reason string
}

func (e Configuration) Error() string {
	if e.Option == "" {
		return "configuration: " + e.Reason
	}
	return fmt.Sprintf("configuration: %s: %s", e.Option, e.Reason)
}

// NotFitted reports a transform applied before its parameters were fit.
type NotFitted struct {
	Op string
}

func (e NotFitted) Error() string {
	return e.Op + ": called before fit"
}

// UntrainedModel reports a prediction requested before training reached a
// terminal state.
type UntrainedModel struct {
	Op string
}

func (e UntrainedModel) Error() string {
	return e.Op + ": model has not been trained"
}
