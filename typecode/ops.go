package typecode

// Clone deep-copies node. Primitive nodes are canonical singletons and
// are returned as-is rather than copied.
func Clone(node *TypeCode) *TypeCode {
	if node == nil {
		return nil
	}
	if node.Kind.IsPrimitive() {
		return node
	}
	clone := &TypeCode{
		Kind: node.Kind,
		Name: node.Name,
		Bound: node.Bound,
	}
	if node.Element != nil {
		clone.Element = Clone(node.Element)
	}
	if node.Dimensions != nil {
		clone.Dimensions = append([]uint32(nil), node.Dimensions...)
	}
	if node.Labels != nil {
		clone.Labels = append([]string(nil), node.Labels...)
	}
	if node.Members != nil {
		clone.Members = make([]Member, len(node.Members))
		for i, m := range node.Members {
			clone.Members[i] = Member{Name: m.Name, Type: Clone(m.Type)}
		}
	}
	return clone
}

// Equal reports whether a and b are structurally identical: same kind,
// same name for named kinds, same bounds, and — for structs, unions, and
// values — the same ordered member list with recursively equal types.
// Primitive nodes are equal iff they share the same kind.
func Equal(a, b *TypeCode) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind.IsPrimitive() {
		return true
	}
	switch a.Kind {
	case KindString, KindWString:
		return a.Bound == b.Bound
	case KindSequence:
		return a.Bound == b.Bound && Equal(a.Element, b.Element)
	case KindArray:
		if len(a.Dimensions) != len(b.Dimensions) {
			return false
		}
		for i := range a.Dimensions {
			if a.Dimensions[i] != b.Dimensions[i] {
				return false
			}
		}
		return Equal(a.Element, b.Element)
	case KindEnum:
		if a.Name != b.Name || len(a.Labels) != len(b.Labels) {
			return false
		}
		for i := range a.Labels {
			if a.Labels[i] != b.Labels[i] {
				return false
			}
		}
		return true
	case KindStruct, KindUnion, KindValue:
		if a.Name != b.Name || len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if a.Members[i].Name != b.Members[i].Name {
				return false
			}
			if !Equal(a.Members[i].Type, b.Members[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// WalkMembers visits each (index, name, type) triple of a struct's ordered
// members in declaration order, stopping early if fn returns false. It is
// a no-op for non-struct nodes.
func WalkMembers(node *TypeCode, fn func(index int, name string, t *TypeCode) bool) {
	if node == nil || node.Kind != KindStruct {
		return
	}
	for i, m := range node.Members {
		if !fn(i, m.Name, m.Type) {
			return
		}
	}
}

// ResolveCollection walks through nested sequence/array wrappers until a
// non-collection element type is reached.
func ResolveCollection(n *TypeCode) *TypeCode {
	cur := n
	for cur != nil && cur.Kind.IsCollection() {
		cur = cur.Element
	}
	return cur
}
