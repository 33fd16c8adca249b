package typecode_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/typewatch/typecode"
)

func TestPrimitiveSingleton(t *testing.T) {
	a := typecode.Primitive(typecode.KindLong)
	b := typecode.Primitive(typecode.KindLong)
	require.Same(t, a, b)
}

func TestPrimitivePanicsOnNonPrimitive(t *testing.T) {
	require.Panics(t, func() {
		typecode.Primitive(typecode.KindStruct)
	})
}

func TestEqualStruct(t *testing.T) {
	a := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "x", Type: typecode.Primitive(typecode.KindLong)},
	})
	b := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "x", Type: typecode.Primitive(typecode.KindLong)},
	})
	c := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "y", Type: typecode.Primitive(typecode.KindLong)},
	})
	require.True(t, typecode.Equal(a, b))
	require.False(t, typecode.Equal(a, c))
}

func TestEqualMemberOrderMatters(t *testing.T) {
	a := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "x", Type: typecode.Primitive(typecode.KindLong)},
		{Name: "y", Type: typecode.Primitive(typecode.KindShort)},
	})
	b := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "y", Type: typecode.Primitive(typecode.KindShort)},
		{Name: "x", Type: typecode.Primitive(typecode.KindLong)},
	})
	require.False(t, typecode.Equal(a, b))
}

func TestClonePreservesStructureButNotIdentity(t *testing.T) {
	orig := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "x", Type: typecode.NewString(typecode.Unbounded)},
	})
	clone := typecode.Clone(orig)
	require.True(t, typecode.Equal(orig, clone))
	require.NotSame(t, orig, clone)
	require.NotSame(t, orig.Members[0].Type, clone.Members[0].Type)
}

func TestClonePrimitiveReturnsCanonicalInstance(t *testing.T) {
	p := typecode.Primitive(typecode.KindBool)
	require.Same(t, p, typecode.Clone(p))
}

func TestResolveCollection(t *testing.T) {
	elem := typecode.Primitive(typecode.KindLong)
	seq := typecode.NewSequence(typecode.Unbounded, typecode.NewSequence(typecode.NewBound(4), elem))
	require.Same(t, elem, typecode.ResolveCollection(seq))
}

func TestWalkMembers(t *testing.T) {
	s := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "x", Type: typecode.Primitive(typecode.KindLong)},
		{Name: "y", Type: typecode.Primitive(typecode.KindShort)},
	})
	var names []string
	typecode.WalkMembers(s, func(index int, name string, t *typecode.TypeCode) bool {
		names = append(names, name)
		return true
	})
	require.Equal(t, []string{"x", "y"}, names)
}

func TestBoundUnbounded(t *testing.T) {
	require.True(t, typecode.Unbounded.IsUnbounded())
	require.False(t, typecode.NewBound(0).IsUnbounded())
	require.NotEqual(t, typecode.Unbounded, typecode.NewBound(0))
}
