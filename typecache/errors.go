package typecache

import "fmt"

// ConflictError reports that a type was re-asserted under a name already
// bound to a structurally different descriptor.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict detected for asserted typecode: %s", e.Name)
}

// TopicConflictError reports that a topic was re-bound to a type name
// different from the one it was originally asserted with.
type TopicConflictError struct {
	Topic string
}

func (e *TopicConflictError) Error() string {
	return fmt.Sprintf("topic already asserted with a different type: %s", e.Topic)
}

// InvalidConfigError reports a mutually exclusive or unsatisfiable
// combination of Options.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid type cache configuration: %s", e.Reason)
}
