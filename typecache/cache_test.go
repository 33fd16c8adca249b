package typecache_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wkalt/typewatch/introspection"
	"github.com/wkalt/typewatch/typecache"
	"github.com/wkalt/typewatch/typecode"
)

type fakeLoader struct {
	handles map[string]*introspection.MembersHandle
}

func (f fakeLoader) Load(pkg, middle, typeName string) (*introspection.MembersHandle, error) {
	key := pkg + "/" + middle + "/" + typeName
	h, ok := f.handles[key]
	if !ok {
		return nil, &introspection.LoadFailureError{Package: pkg, Reason: "no fake handle registered"}
	}
	return h, nil
}

func newFakeLoader() fakeLoader {
	return fakeLoader{handles: map[string]*introspection.MembersHandle{
		"std_msgs/msg/String": {
			Namespace: "std_msgs::msg",
			Name:      "String",
			Members: []introspection.MemberRecord{
				{Name: "data", TypeID: introspection.FieldTypeString},
			},
		},
		"example/srv/AddTwoInts_Request": {
			Namespace: "example::srv",
			Name:      "AddTwoInts_Request",
			Members: []introspection.MemberRecord{
				{Name: "a", TypeID: introspection.FieldTypeInt64},
				{Name: "b", TypeID: introspection.FieldTypeInt64},
			},
		},
	}}
}

// Scenario 1: plain ROS name.
func TestAssertFromNamePlainROSType(t *testing.T) {
	c, err := typecache.New(newFakeLoader())
	require.NoError(t, err)

	isNew, added, present, err := c.AssertFromName("std_msgs/msg/String")
	require.NoError(t, err)
	require.True(t, isNew)
	require.Empty(t, present)
	require.Len(t, added, 1)

	root := added[0]
	require.Equal(t, "std_msgs::msg::String", root.Name)
	require.Len(t, root.Members, 1)
	require.Equal(t, "data", root.Members[0].Name)
	require.Equal(t, typecode.KindString, root.Members[0].Type.Kind)
	require.True(t, root.Members[0].Type.Bound.IsUnbounded())
}

// Scenario 2: mangled form of the same type is idempotent.
func TestAssertFromNameMangledFormIsIdempotent(t *testing.T) {
	c, err := typecache.New(newFakeLoader())
	require.NoError(t, err)

	_, _, _, err = c.AssertFromName("std_msgs/msg/String")
	require.NoError(t, err)

	isNew, added, present, err := c.AssertFromName("std_msgs::msg::dds_::String_")
	require.NoError(t, err)
	require.False(t, isNew)
	require.Empty(t, added)
	require.Len(t, present, 1)
	require.Equal(t, "std_msgs::msg::String", present[0].Name)
}

// Scenario 3: topic bound to an already-asserted type by name only.
func TestAssertTopicWithExistingType(t *testing.T) {
	c, err := typecache.New(newFakeLoader())
	require.NoError(t, err)

	_, _, _, err = c.AssertFromName("std_msgs/msg/String")
	require.NoError(t, err)

	isNewTopic, isNewType, _, present, err := c.AssertTopic("/chatter", "std_msgs/msg/String")
	require.NoError(t, err)
	require.True(t, isNewTopic)
	require.False(t, isNewType)
	require.Len(t, present, 1)

	name, ok := c.TopicType("/chatter")
	require.True(t, ok)
	require.Equal(t, "std_msgs::msg::String", name)
}

func TestAssertTopicIdempotentAndConflict(t *testing.T) {
	loader := newFakeLoader()
	loader.handles["example/msg/Other"] = &introspection.MembersHandle{
		Namespace: "example::msg",
		Name:      "Other",
		Members:   []introspection.MemberRecord{{Name: "x", TypeID: introspection.FieldTypeBool}},
	}
	c, err := typecache.New(loader)
	require.NoError(t, err)

	_, _, _, _, err = c.AssertTopic("/chatter", "std_msgs/msg/String")
	require.NoError(t, err)

	isNewTopic, _, _, _, err := c.AssertTopic("/chatter", "std_msgs/msg/String")
	require.NoError(t, err)
	require.False(t, isNewTopic)

	_, _, _, _, err = c.AssertTopic("/chatter", "example/msg/Other")
	require.Error(t, err)
	var conflict *typecache.TopicConflictError
	require.ErrorAs(t, err, &conflict)
}

// Scenario 4: request/reply basic mapping injects a synthetic header.
func TestAssertFromNameRequestReplyBasicMapping(t *testing.T) {
	c, err := typecache.New(newFakeLoader())
	require.NoError(t, err)

	isNew, added, _, err := c.AssertFromName("example/srv/AddTwoInts_Request")
	require.NoError(t, err)
	require.True(t, isNew)

	var root *typecode.TypeCode
	for _, tc := range added {
		if tc.Name == "example::srv::AddTwoInts_Request" {
			root = tc
		}
	}
	require.NotNil(t, root)
	require.Len(t, root.Members, 3)
	require.Equal(t, "_header", root.Members[0].Name)
	require.Equal(t, "RequestHeader", root.Members[0].Type.Name)
	require.Equal(t, "a", root.Members[1].Name)
	require.Equal(t, "b", root.Members[2].Name)

	// The header chain built lazily on this first request/reply assertion
	// must be reported through the same newlyAdded slice as the request
	// type itself, not swallowed by an internal accumulator.
	names := make([]string, len(added))
	for i, tc := range added {
		names[i] = tc.Name
	}
	require.Contains(t, names, "GUID")
	require.Contains(t, names, "SequenceNumber_t")
	require.Contains(t, names, "SampleIdentity")
	require.Contains(t, names, "RequestHeader")
}

func TestAssertFromNameExtendedMappingHasNoHeader(t *testing.T) {
	c, err := typecache.New(newFakeLoader(), typecache.WithRequestReplyMapping(typecache.MappingExtended))
	require.NoError(t, err)

	_, added, _, err := c.AssertFromName("example/srv/AddTwoInts_Request")
	require.NoError(t, err)

	var root *typecode.TypeCode
	for _, tc := range added {
		if tc.Name == "example::srv::AddTwoInts_Request" {
			root = tc
		}
	}
	require.NotNil(t, root)
	require.Len(t, root.Members, 2)
	require.Equal(t, "a", root.Members[0].Name)
}

// Scenario 5: conflicting struct assertion under the same name.
func TestAssertFromTypecodeConflict(t *testing.T) {
	c, err := typecache.New(newFakeLoader())
	require.NoError(t, err)

	a := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "x", Type: typecode.Primitive(typecode.KindLong)},
	})
	_, _, _, err = c.AssertFromTypecode(a, false, "")
	require.NoError(t, err)

	b := typecode.NewStruct("ns::A", []typecode.Member{
		{Name: "y", Type: typecode.Primitive(typecode.KindLong)},
	})
	_, _, _, err = c.AssertFromTypecode(b, false, "")
	require.Error(t, err)
	var conflict *typecache.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "ns::A", conflict.Name)
}

// Scenario 6: nested struct shared by two top-level types is deduplicated
// and pointer-identical across both parents.
func TestAssertFromTypecodeNestedDedup(t *testing.T) {
	c, err := typecache.New(newFakeLoader())
	require.NoError(t, err)

	nested := typecode.NewStruct("ns::N", []typecode.Member{
		{Name: "v", Type: typecode.Primitive(typecode.KindLong)},
	})
	parent1 := typecode.NewStruct("ns::P1", []typecode.Member{{Name: "n", Type: nested}})
	parent2 := typecode.NewStruct("ns::P2", []typecode.Member{{Name: "n", Type: nested}})

	isNew1, added1, _, err := c.AssertFromTypecode(parent1, false, "")
	require.NoError(t, err)
	require.True(t, isNew1)
	require.Len(t, added1, 2) // N, then P1

	isNew2, added2, present2, err := c.AssertFromTypecode(parent2, false, "")
	require.NoError(t, err)
	require.True(t, isNew2)
	require.Len(t, added2, 1) // only P2
	require.Len(t, present2, 1)
	require.Equal(t, "ns::N", present2[0].Name)

	cachedN := c.Find("ns::N")
	require.NotNil(t, cachedN)
	require.Same(t, cachedN, added1[0])
	require.Same(t, cachedN, present2[0])

	p1 := c.Find("ns::P1")
	p2 := c.Find("ns::P2")
	require.Same(t, cachedN, p1.Members[0].Type)
	require.Same(t, cachedN, p2.Members[0].Type)
}

// Scenario: a type asserted once by name (file input) and once by typecode
// (discovery input) must land under the same canonical cache key.
func TestAssertFromTypecodeROSDemangleUsesCanonicalKey(t *testing.T) {
	c, err := typecache.New(newFakeLoader())
	require.NoError(t, err)

	_, _, _, err = c.AssertFromName("std_msgs/msg/String")
	require.NoError(t, err)

	wire := typecode.NewStruct("std_msgs::msg::dds_::String_", []typecode.Member{
		{Name: "data_", Type: typecode.NewString(typecode.Unbounded)},
	})
	isNew, added, present, err := c.AssertFromTypecode(wire, true, "std_msgs/msg/String")
	require.NoError(t, err)
	require.False(t, isNew)
	require.Empty(t, added)
	require.Len(t, present, 1)
	require.Equal(t, "std_msgs::msg::String", present[0].Name)

	require.NotNil(t, c.Find("std_msgs::msg::String"))
	require.Nil(t, c.Find("std_msgs/msg/String"))
}

func TestAssertFromNameNestedMessageAndArrayFields(t *testing.T) {
	loader := newFakeLoader()
	loader.handles["geometry_msgs/msg/Point"] = &introspection.MembersHandle{
		Namespace: "geometry_msgs::msg",
		Name:      "Point",
		Members: []introspection.MemberRecord{
			{Name: "x", TypeID: introspection.FieldTypeFloat64},
			{Name: "y", TypeID: introspection.FieldTypeFloat64},
		},
	}
	loader.handles["geometry_msgs/msg/Polygon"] = &introspection.MembersHandle{
		Namespace: "geometry_msgs::msg",
		Name:      "Polygon",
		Members: []introspection.MemberRecord{
			{
				Name:   "fixed_points",
				TypeID: introspection.FieldTypeMessage,
				NestedMembers: &introspection.MembersHandle{
					Namespace: "geometry_msgs::msg", Name: "Point",
					Members: []introspection.MemberRecord{
						{Name: "x", TypeID: introspection.FieldTypeFloat64},
						{Name: "y", TypeID: introspection.FieldTypeFloat64},
					},
				},
				IsArray: true, ArraySize: 4, IsUpperBound: false,
			},
			{
				Name:   "bounded_points",
				TypeID: introspection.FieldTypeMessage,
				NestedMembers: &introspection.MembersHandle{
					Namespace: "geometry_msgs::msg", Name: "Point",
					Members: []introspection.MemberRecord{
						{Name: "x", TypeID: introspection.FieldTypeFloat64},
						{Name: "y", TypeID: introspection.FieldTypeFloat64},
					},
				},
				IsArray: true, ArraySize: 10, IsUpperBound: true,
			},
			{
				Name:    "unbounded_points",
				TypeID:  introspection.FieldTypeMessage,
				NestedMembers: &introspection.MembersHandle{
					Namespace: "geometry_msgs::msg", Name: "Point",
					Members: []introspection.MemberRecord{
						{Name: "x", TypeID: introspection.FieldTypeFloat64},
						{Name: "y", TypeID: introspection.FieldTypeFloat64},
					},
				},
				IsArray: true, ArraySize: 0, IsUpperBound: false,
			},
		},
	}

	c, err := typecache.New(loader)
	require.NoError(t, err)

	_, added, _, err := c.AssertFromName("geometry_msgs/msg/Polygon")
	require.NoError(t, err)

	var root *typecode.TypeCode
	for _, tc := range added {
		if tc.Name == "geometry_msgs::msg::Polygon" {
			root = tc
		}
	}
	require.NotNil(t, root)

	fixed := root.Members[0].Type
	require.Equal(t, typecode.KindArray, fixed.Kind)
	require.Equal(t, []uint32{4}, fixed.Dimensions)
	require.Equal(t, typecode.KindStruct, fixed.Element.Kind)

	bounded := root.Members[1].Type
	require.Equal(t, typecode.KindSequence, bounded.Kind)
	require.False(t, bounded.Bound.IsUnbounded())
	require.EqualValues(t, 10, bounded.Bound.Value())

	unbounded := root.Members[2].Type
	require.Equal(t, typecode.KindSequence, unbounded.Kind)
	require.True(t, unbounded.Bound.IsUnbounded())

	// The nested Point struct is shared across all three members.
	require.Same(t, fixed.Element, bounded.Element)
	require.Same(t, fixed.Element, unbounded.Element)
}

func TestNewOptionsRejectsIncompatibleCombinations(t *testing.T) {
	_, err := typecache.NewOptions(
		typecache.WithCycloneCompat(true),
		typecache.WithLegacyRMWCompat(true),
	)
	require.Error(t, err)

	_, err = typecache.NewOptions(
		typecache.WithCycloneCompat(true),
		typecache.WithRequestReplyMapping(typecache.MappingExtended),
	)
	require.Error(t, err)

	_, err = typecache.NewOptions(
		typecache.WithLegacyRMWCompat(true),
		typecache.WithRequestReplyMapping(typecache.MappingBasic),
	)
	require.Error(t, err)
}

func TestOrderedTypesReflectsInsertionOrder(t *testing.T) {
	c, err := typecache.New(newFakeLoader())
	require.NoError(t, err)

	_, _, _, err = c.AssertFromName("std_msgs/msg/String")
	require.NoError(t, err)
	_, _, _, err = c.AssertFromName("example/srv/AddTwoInts_Request")
	require.NoError(t, err)

	ordered := c.OrderedTypes()
	// String; GUID, SequenceNumber_t, SampleIdentity, RequestHeader (header
	// chain, built lazily on first request/reply assertion); AddTwoInts_Request.
	require.Len(t, ordered, 6)
	require.Equal(t, "std_msgs::msg::String", ordered[0].Name)
	require.Equal(t, "example::srv::AddTwoInts_Request", ordered[len(ordered)-1].Name)
}
