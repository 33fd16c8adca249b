// Package typecache implements the content-addressed type/topic registry:
// it interns TypeCode descriptors under a canonical name, deduplicates
// nested complex types by pointer identity, detects structural conflicts,
// and binds topic names to type names.
package typecache

import (
	"fmt"
	"sync"

	"github.com/wkalt/typewatch/introspection"
	"github.com/wkalt/typewatch/typecode"
	"github.com/wkalt/typewatch/typename"
)

// Cache is the Type Cache core. All state is guarded by a single mutex.
// Zero value is not usable; construct with New.
type Cache struct {
	mu                   sync.Mutex
	options              Options
	loader               Loader
	typesByName          map[string]*typecode.TypeCode
	allTypes             []*typecode.TypeCode
	topics               map[string]string
	headers              headerBuilder
	introspectionHandles map[string]*introspection.MembersHandle
}

// New constructs a Cache backed by loader (used by AssertFromName to
// resolve introspection modules) with the given options.
func New(loader Loader, opts ...Option) (*Cache, error) {
	o, err := NewOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Cache{
		options:     o,
		loader:      loader,
		typesByName: make(map[string]*typecode.TypeCode),
		topics:      make(map[string]string),
	}, nil
}

// assertionAccum collects the newly-added and already-present nodes
// touched by a single top-level assertion, in the order internType visits
// them: leaves first (dependency order), root last.
type assertionAccum struct {
	newlyAdded     []*typecode.TypeCode
	alreadyPresent []*typecode.TypeCode
}

// internType is the single recursive interning routine for both top-level
// assertions and nested-type dedup: it walks tc, replacing every complex
// (struct/enum/union/value) subtree with the canonical cached instance,
// inserting new ones as it goes. staged holds nodes already resolved within
// this single top-level call, so a type referenced twice in one assertion is
// only compared/inserted once. Primitive and string nodes pass through
// unchanged; collection nodes are rebuilt around their interned element.
func (c *Cache) internType(
	tc *typecode.TypeCode,
	staged map[string]*typecode.TypeCode,
	acc *assertionAccum,
) (*typecode.TypeCode, error) {
	if tc == nil {
		return nil, nil
	}

	switch {
	case tc.Kind.IsPrimitive(), tc.Kind == typecode.KindString, tc.Kind == typecode.KindWString:
		return tc, nil

	case tc.Kind.IsCollection():
		element, err := c.internType(tc.Element, staged, acc)
		if err != nil {
			return nil, err
		}
		if tc.Kind == typecode.KindArray {
			return typecode.NewArray(tc.Dimensions, element), nil
		}
		return typecode.NewSequence(tc.Bound, element), nil

	case tc.Kind.IsComplex():
		if already, ok := staged[tc.Name]; ok {
			return already, nil
		}
		if existing, ok := c.typesByName[tc.Name]; ok {
			if !typecode.Equal(existing, tc) {
				return nil, &ConflictError{Name: tc.Name}
			}
			staged[tc.Name] = existing
			acc.alreadyPresent = append(acc.alreadyPresent, existing)
			return existing, nil
		}

		canonical, err := c.rewireComplex(tc, staged, acc)
		if err != nil {
			return nil, err
		}
		c.typesByName[canonical.Name] = canonical
		c.allTypes = append(c.allTypes, canonical)
		staged[canonical.Name] = canonical
		acc.newlyAdded = append(acc.newlyAdded, canonical)
		return canonical, nil

	default:
		return tc, nil
	}
}

// rewireComplex builds a fresh complex node whose member/element references
// point at interned (canonical) instances. Members are interned before the
// node itself is inserted, which is what makes internType's insertion order
// naturally leaves-first.
func (c *Cache) rewireComplex(
	tc *typecode.TypeCode,
	staged map[string]*typecode.TypeCode,
	acc *assertionAccum,
) (*typecode.TypeCode, error) {
	if tc.Kind == typecode.KindEnum {
		return typecode.NewEnum(tc.Name, tc.Labels), nil
	}
	members := make([]typecode.Member, len(tc.Members))
	for i, m := range tc.Members {
		memberType, err := c.internType(m.Type, staged, acc)
		if err != nil {
			return nil, err
		}
		members[i] = typecode.Member{Name: m.Name, Type: memberType}
	}
	switch tc.Kind {
	case typecode.KindUnion:
		return typecode.NewUnion(tc.Name, members), nil
	case typecode.KindValue:
		return typecode.NewValue(tc.Name, members), nil
	default:
		return typecode.NewStruct(tc.Name, members), nil
	}
}

// AssertFromTypecode asserts a descriptor built directly from a wire
// typecode, rather than resolved by name. tc is the descriptor as it
// arrived (its Name reflects its on-wire form).
// demangledHint is the caller's best-effort demangled/normalised name for
// tc, used only to decide whether tc needs re-mangling or re-demangling to
// match the cache's configured storage form.
func (c *Cache) AssertFromTypecode(
	tc *typecode.TypeCode, isROS bool, demangledHint string,
) (isNew bool, newlyAdded, alreadyPresent []*typecode.TypeCode, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	assertTC := tc
	switch {
	case isROS && !c.options.demangleNames && tc.Name == demangledHint:
		assertTC, err = MangleTypecode(tc, c.options.legacyRMWCompat)
	case isROS && c.options.demangleNames && tc.Name != demangledHint:
		assertTC, err = DemangleTypecode(tc)
	}
	if err != nil {
		return false, nil, nil, err
	}

	acc := &assertionAccum{}
	if _, err := c.internType(assertTC, map[string]*typecode.TypeCode{}, acc); err != nil {
		return false, nil, nil, err
	}
	return len(acc.newlyAdded) > 0, acc.newlyAdded, acc.alreadyPresent, nil
}

// toROSForm normalises name (which may already be a demangled ROS name in
// slash form, or an on-wire mangled DDS name) to the pkg/middle/Type slash
// form ParseROS/the introspection loader expect.
func toROSForm(name string) (string, error) {
	if !containsDoubleColon(name) {
		return name, nil
	}
	return typename.Demangle(name)
}

func containsDoubleColon(name string) bool {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == ':' && name[i+1] == ':' {
			return true
		}
	}
	return false
}

// canonicalNameForROS computes the storage key AssertFromName inserts a
// freshly-built struct under: normalise(mangle(rosName)) when the cache
// stores demangled names (matching normalize_dds_type_name's always-"::"
// output), or the raw mangled form otherwise.
func (c *Cache) canonicalNameForROS(rosName string) (string, error) {
	mangled, err := typename.Mangle(rosName)
	if err != nil {
		return "", err
	}
	if !c.options.demangleNames {
		return mangled, nil
	}
	return typename.Normalise(mangled)
}

// resolveHandle returns the introspection handle for (pkg, middle, typ),
// consulting introspectionHandles under c.mu before falling back to the
// loader. The map is keyed by the full pkg/middle/type name, so every
// later assertion of the same type is served from the map without calling
// the loader again; a different type from the same package still goes
// through c.loader.Load.
func (c *Cache) resolveHandle(pkg, middle, typ string) (*introspection.MembersHandle, error) {
	key := pkg + "/" + middle + "/" + typ

	c.mu.Lock()
	if handle, ok := c.introspectionHandles[key]; ok {
		c.mu.Unlock()
		return handle, nil
	}
	c.mu.Unlock()

	handle, err := c.loader.Load(pkg, middle, typ)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.introspectionHandles == nil {
		c.introspectionHandles = make(map[string]*introspection.MembersHandle)
	}
	c.introspectionHandles[key] = handle
	c.mu.Unlock()
	return handle, nil
}

// AssertFromName resolves the introspection module for the named type,
// recursively builds a struct descriptor from its member list, injects
// the request/reply header (if any) at index 0, and interns the result.
func (c *Cache) AssertFromName(rosName string) (isNew bool, newlyAdded, alreadyPresent []*typecode.TypeCode, err error) {
	rosSlash, err := toROSForm(rosName)
	if err != nil {
		return false, nil, nil, err
	}
	pkg, middle, typ, err := typename.ParseROS(rosSlash)
	if err != nil {
		return false, nil, nil, err
	}
	isRR, isRequest := typename.IsRequestReply(typ)

	handle, err := c.resolveHandle(pkg, middle, typ)
	if err != nil {
		return false, nil, nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	canonicalName, err := c.canonicalNameForROS(pkg + "/" + middle + "/" + typ)
	if err != nil {
		return false, nil, nil, err
	}

	members, err := c.buildMembers(handle.Members)
	if err != nil {
		return false, nil, nil, err
	}

	acc := &assertionAccum{}
	kind := c.options.selectHeaderKind(isRR, isRequest)
	if kind != headerNone {
		header := c.header(kind, acc)
		members = append([]typecode.Member{{Name: "_header", Type: header}}, members...)
	}

	root := typecode.NewStruct(canonicalName, members)

	if _, err := c.internType(root, map[string]*typecode.TypeCode{}, acc); err != nil {
		return false, nil, nil, err
	}
	return len(acc.newlyAdded) > 0, acc.newlyAdded, acc.alreadyPresent, nil
}

// buildMembers converts introspection member records into TypeCode
// members, recursing into nested messages, mapping each member's
// primitive kind and applying array/sequence bound rules along the way.
func (c *Cache) buildMembers(records []introspection.MemberRecord) ([]typecode.Member, error) {
	members := make([]typecode.Member, 0, len(records))
	for _, rec := range records {
		fieldType, err := c.buildFieldType(rec)
		if err != nil {
			return nil, err
		}
		name := typename.MangleMemberName(rec.Name, c.options.legacyRMWCompat)
		members = append(members, typecode.Member{Name: name, Type: fieldType})
	}
	return members, nil
}

func (c *Cache) buildFieldType(rec introspection.MemberRecord) (*typecode.TypeCode, error) {
	leaf, err := c.buildLeafType(rec)
	if err != nil {
		return nil, err
	}
	if !rec.IsArray {
		return leaf, nil
	}
	if rec.ArraySize > 0 && !rec.IsUpperBound {
		return typecode.NewArray([]uint32{rec.ArraySize}, leaf), nil
	}
	bound := typecode.Unbounded
	if rec.IsUpperBound {
		bound = typecode.NewBound(rec.ArraySize)
	}
	return typecode.NewSequence(bound, leaf), nil
}

func (c *Cache) buildLeafType(rec introspection.MemberRecord) (*typecode.TypeCode, error) {
	switch rec.TypeID {
	case introspection.FieldTypeBool:
		return typecode.Primitive(typecode.KindBool), nil
	case introspection.FieldTypeByte, introspection.FieldTypeUint8, introspection.FieldTypeInt8:
		return typecode.Primitive(typecode.KindOctet), nil
	case introspection.FieldTypeChar:
		return typecode.Primitive(typecode.KindChar), nil
	case introspection.FieldTypeFloat32:
		return typecode.Primitive(typecode.KindFloat), nil
	case introspection.FieldTypeFloat64:
		return typecode.Primitive(typecode.KindDouble), nil
	case introspection.FieldTypeInt16:
		return typecode.Primitive(typecode.KindShort), nil
	case introspection.FieldTypeUint16:
		return typecode.Primitive(typecode.KindUShort), nil
	case introspection.FieldTypeInt32:
		return typecode.Primitive(typecode.KindLong), nil
	case introspection.FieldTypeUint32:
		return typecode.Primitive(typecode.KindULong), nil
	case introspection.FieldTypeInt64:
		return typecode.Primitive(typecode.KindLongLong), nil
	case introspection.FieldTypeUint64:
		return typecode.Primitive(typecode.KindULongLong), nil
	case introspection.FieldTypeString:
		return c.buildBoundedString(typecode.KindString, rec), nil
	case introspection.FieldTypeWString:
		return c.buildBoundedString(typecode.KindWString, rec), nil
	case introspection.FieldTypeMessage:
		return c.buildNested(rec)
	default:
		return nil, fmt.Errorf("typecache: unknown introspection type_id %d for member %q", rec.TypeID, rec.Name)
	}
}

func (c *Cache) buildBoundedString(kind typecode.Kind, rec introspection.MemberRecord) *typecode.TypeCode {
	bound := typecode.Unbounded
	if rec.StringUpperBound > 0 {
		bound = typecode.NewBound(rec.StringUpperBound)
	}
	if kind == typecode.KindWString {
		return typecode.NewWString(bound)
	}
	return typecode.NewString(bound)
}

func (c *Cache) buildNested(rec introspection.MemberRecord) (*typecode.TypeCode, error) {
	if rec.NestedMembers == nil {
		return nil, fmt.Errorf("typecache: message member %q has no nested members", rec.Name)
	}
	nestedMembers, err := c.buildMembers(rec.NestedMembers.Members)
	if err != nil {
		return nil, err
	}
	name := rec.NestedMembers.Namespace + "::" + rec.NestedMembers.Name
	canonical, err := typename.Normalise(name)
	if err != nil {
		canonical = name
	}
	return typecode.NewStruct(canonical, nestedMembers), nil
}

// AssertTopic handles a name-only ROS topic assertion: it asserts the
// type, then binds topic to the resulting canonical name.
func (c *Cache) AssertTopic(topic, rosName string) (
	isNewTopic, isNewType bool, newlyAdded, alreadyPresent []*typecode.TypeCode, err error,
) {
	isNewType, newlyAdded, alreadyPresent, err = c.AssertFromName(rosName)
	if err != nil {
		return false, false, nil, nil, err
	}
	typeName := topicTypeName(isNewType, newlyAdded, alreadyPresent)

	c.mu.Lock()
	defer c.mu.Unlock()
	isNewTopic, err = c.bindTopic(topic, typeName)
	return isNewTopic, isNewType, newlyAdded, alreadyPresent, err
}

// AssertTopicFromTypecode mirrors AssertTopic for a descriptor asserted
// directly from a typecode rather than a name.
func (c *Cache) AssertTopicFromTypecode(topic string, tc *typecode.TypeCode, isROS bool, demangledHint string) (
	isNewTopic, isNewType bool, newlyAdded, alreadyPresent []*typecode.TypeCode, err error,
) {
	isNewType, newlyAdded, alreadyPresent, err = c.AssertFromTypecode(tc, isROS, demangledHint)
	if err != nil {
		return false, false, nil, nil, err
	}
	typeName := topicTypeName(isNewType, newlyAdded, alreadyPresent)

	c.mu.Lock()
	defer c.mu.Unlock()
	isNewTopic, err = c.bindTopic(topic, typeName)
	return isNewTopic, isNewType, newlyAdded, alreadyPresent, err
}

func topicTypeName(isNew bool, newlyAdded, alreadyPresent []*typecode.TypeCode) string {
	if isNew {
		return newlyAdded[len(newlyAdded)-1].Name
	}
	return alreadyPresent[len(alreadyPresent)-1].Name
}

// bindTopic must be called with c.mu held.
func (c *Cache) bindTopic(topic, typeName string) (bool, error) {
	if existing, ok := c.topics[topic]; ok {
		if existing != typeName {
			return false, &TopicConflictError{Topic: topic}
		}
		return false, nil
	}
	c.topics[topic] = typeName
	return true, nil
}

// OrderedTypes returns all asserted types in insertion order.
func (c *Cache) OrderedTypes() []*typecode.TypeCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*typecode.TypeCode, len(c.allTypes))
	copy(out, c.allTypes)
	return out
}

// Find returns the cached node for a canonical name, or nil if absent.
func (c *Cache) Find(name string) *typecode.TypeCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typesByName[name]
}

// TopicType returns the canonical type name bound to topic, or "" if the
// topic has not been asserted.
func (c *Cache) TopicType(topic string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.topics[topic]
	return name, ok
}

// Topics returns a snapshot of every bound topic->type-name pair.
func (c *Cache) Topics() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.topics))
	for k, v := range c.topics {
		out[k] = v
	}
	return out
}
