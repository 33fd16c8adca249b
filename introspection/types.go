package introspection

// Lang identifies which introspection typesupport flavour produced a
// MembersHandle.
type Lang string

const (
	LangC   Lang = "c"
	LangCPP Lang = "cpp"
)

func (l Lang) identifier() string {
	if l == LangCPP {
		return "rosidl_typesupport_introspection_cpp"
	}
	return "rosidl_typesupport_introspection_c"
}

// MemberRecord describes one field of an introspected message.
type MemberRecord struct {
	Name             string
	TypeID           FieldTypeID
	IsArray          bool
	ArraySize        uint32
	IsUpperBound     bool
	StringUpperBound uint32
	NestedMembers    *MembersHandle
}

// MembersHandle is the narrowed, language-agnostic view of an
// introspection typesupport: a namespace, a type name, and its ordered
// member list.
type MembersHandle struct {
	Namespace string
	Name      string
	Members   []MemberRecord
}

// TypeSupportHandle is what an introspection plugin's exported symbol
// returns: an opaque handle tagged with the language flavour that
// produced it, narrowed by the loader to confirm it matches the flavour
// being probed.
type TypeSupportHandle struct {
	Lang    Lang
	Members *MembersHandle
}

// FieldTypeID mirrors the rosidl introspection type_id enumeration used
// to select a primitive kind.
type FieldTypeID int

const (
	FieldTypeBool FieldTypeID = iota
	FieldTypeByte
	FieldTypeUint8
	FieldTypeInt8
	FieldTypeChar
	FieldTypeFloat32
	FieldTypeFloat64
	FieldTypeInt16
	FieldTypeUint16
	FieldTypeInt32
	FieldTypeUint32
	FieldTypeInt64
	FieldTypeUint64
	FieldTypeString
	FieldTypeWString
	FieldTypeMessage
)
