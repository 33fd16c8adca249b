package introspection

import "fmt"

// LoadFailureError reports that no introspection typesupport variant
// could be located or resolved for a package.
type LoadFailureError struct {
	Package string
	Reason  string
}

func (e *LoadFailureError) Error() string {
	return fmt.Sprintf("failed to load introspection typesupport for package %q: %s", e.Package, e.Reason)
}
