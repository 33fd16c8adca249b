package emit

import (
	"fmt"
	"strings"

	"github.com/wkalt/typewatch/typecode"
)

// PrintIDL renders tc as an OMG IDL struct declaration, for embedding in
// the "idl" field of a type or topic record.
func PrintIDL(tc *typecode.TypeCode) string {
	var b strings.Builder
	printIDLNode(&b, tc, 0)
	return b.String()
}

func printIDLNode(b *strings.Builder, tc *typecode.TypeCode, indent int) {
	switch tc.Kind {
	case typecode.KindStruct, typecode.KindUnion, typecode.KindValue:
		fmt.Fprintf(b, "%sstruct %s {\n", pad(indent), tc.Name)
		for _, m := range tc.Members {
			fmt.Fprintf(b, "%s%s %s;\n", pad(indent+1), idlTypeName(m.Type), m.Name)
		}
		fmt.Fprintf(b, "%s};\n", pad(indent))
	case typecode.KindEnum:
		fmt.Fprintf(b, "%senum %s {\n", pad(indent), tc.Name)
		for i, label := range tc.Labels {
			sep := ","
			if i == len(tc.Labels)-1 {
				sep = ""
			}
			fmt.Fprintf(b, "%s%s%s\n", pad(indent+1), label, sep)
		}
		fmt.Fprintf(b, "%s};\n", pad(indent))
	default:
		fmt.Fprintf(b, "%s%s\n", pad(indent), idlTypeName(tc))
	}
}

func pad(indent int) string {
	return strings.Repeat("  ", indent)
}

// idlTypeName renders a member's type as the token that would appear in
// its member declaration.
func idlTypeName(tc *typecode.TypeCode) string {
	switch tc.Kind {
	case typecode.KindBool:
		return "boolean"
	case typecode.KindOctet:
		return "octet"
	case typecode.KindChar:
		return "char"
	case typecode.KindShort:
		return "short"
	case typecode.KindUShort:
		return "unsigned short"
	case typecode.KindLong:
		return "long"
	case typecode.KindULong:
		return "unsigned long"
	case typecode.KindLongLong:
		return "long long"
	case typecode.KindULongLong:
		return "unsigned long long"
	case typecode.KindFloat:
		return "float"
	case typecode.KindDouble:
		return "double"
	case typecode.KindString:
		return "string" + boundSuffix(tc.Bound)
	case typecode.KindWString:
		return "wstring" + boundSuffix(tc.Bound)
	case typecode.KindSequence:
		if tc.Bound.IsUnbounded() {
			return "sequence<" + idlTypeName(tc.Element) + ">"
		}
		return fmt.Sprintf("sequence<%s, %d>", idlTypeName(tc.Element), tc.Bound.Value())
	case typecode.KindArray:
		suffix := ""
		for _, d := range tc.Dimensions {
			suffix += fmt.Sprintf("[%d]", d)
		}
		return idlTypeName(tc.Element) + suffix
	case typecode.KindStruct, typecode.KindUnion, typecode.KindValue, typecode.KindEnum:
		return tc.Name
	default:
		return "unknown"
	}
}

func boundSuffix(b typecode.Bound) string {
	if b.IsUnbounded() {
		return ""
	}
	return fmt.Sprintf("<%d>", b.Value())
}
