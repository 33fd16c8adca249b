package typecache

import (
	"strings"

	"github.com/wkalt/typewatch/typecode"
	"github.com/wkalt/typewatch/typename"
)

// MangleTypecode returns a new struct node whose name is produced by
// mangling and whose members are recursively transformed: structs recurse
// into every member, collections have their non-collection leaf mangled
// with the surrounding sequence/array bounds and dimensions preserved, and
// primitives/strings are reused as-is. It is a pure function: no cache
// state is read or mutated, and the caller owns the returned tree.
func MangleTypecode(tc *typecode.TypeCode, legacyRMWCompat bool) (*typecode.TypeCode, error) {
	return transformTypecode(tc, typename.Mangle, func(n string) string {
		return typename.MangleMemberName(n, legacyRMWCompat)
	})
}

// DemangleTypecode is the exact dual of MangleTypecode, except that its
// resulting names are further collapsed from ROS pkg/middle/Type slash form
// into the pkg::middle::Type canonical form AssertFromName stores under, so
// a type asserted once by name and once by typecode lands under the same
// cache key regardless of which path was used.
func DemangleTypecode(tc *typecode.TypeCode) (*typecode.TypeCode, error) {
	return transformTypecode(tc, canonicalDemangledName, typename.DemangleMemberName)
}

func canonicalDemangledName(name string) (string, error) {
	demangled, err := typename.Demangle(name)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(demangled, "/", "::"), nil
}

func transformTypecode(
	tc *typecode.TypeCode,
	nameFn func(string) (string, error),
	memberNameFn func(string) string,
) (*typecode.TypeCode, error) {
	if tc == nil {
		return nil, nil
	}
	switch {
	case tc.Kind.IsPrimitive():
		return tc, nil
	case tc.Kind == typecode.KindString || tc.Kind == typecode.KindWString:
		return tc, nil
	case tc.Kind.IsCollection():
		element, err := transformTypecode(tc.Element, nameFn, memberNameFn)
		if err != nil {
			return nil, err
		}
		if tc.Kind == typecode.KindArray {
			return typecode.NewArray(tc.Dimensions, element), nil
		}
		return typecode.NewSequence(tc.Bound, element), nil
	case tc.Kind == typecode.KindEnum:
		newName, err := nameFn(tc.Name)
		if err != nil {
			return nil, err
		}
		return typecode.NewEnum(newName, tc.Labels), nil
	case tc.Kind == typecode.KindStruct, tc.Kind == typecode.KindUnion, tc.Kind == typecode.KindValue:
		newName, err := nameFn(tc.Name)
		if err != nil {
			return nil, err
		}
		members := make([]typecode.Member, len(tc.Members))
		for i, m := range tc.Members {
			memberType, err := transformTypecode(m.Type, nameFn, memberNameFn)
			if err != nil {
				return nil, err
			}
			members[i] = typecode.Member{Name: memberNameFn(m.Name), Type: memberType}
		}
		switch tc.Kind {
		case typecode.KindUnion:
			return typecode.NewUnion(newName, members), nil
		case typecode.KindValue:
			return typecode.NewValue(newName, members), nil
		default:
			return typecode.NewStruct(newName, members), nil
		}
	default:
		return tc, nil
	}
}
