package typename

import "fmt"

// InvalidNameError reports a type or topic name that could not be parsed,
// normalised, mangled, or demangled.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
}

func invalidName(name, reason string) error {
	return &InvalidNameError{Name: name, Reason: reason}
}
