package typename

import "strings"

// IsRequestReply reports whether a type name carries a request/reply
// suffix, and if so which polarity it names.
func IsRequestReply(name string) (isRR bool, isRequest bool) {
	if strings.HasSuffix(name, "Request_") || strings.HasSuffix(name, "Request") {
		return true, true
	}
	if strings.HasSuffix(name, "Response_") || strings.HasSuffix(name, "Response") {
		return true, false
	}
	return false, false
}
