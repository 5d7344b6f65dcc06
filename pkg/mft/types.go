package mft

import "fmt"

//AttributeType is the 32 bit type code at the start of every attribute header
type AttributeType uint32

const (
	AttrUnused              AttributeType = 0x0
	AttrStandardInformation AttributeType = 0x10
	AttrAttributeList       AttributeType = 0x20
	AttrFileName            AttributeType = 0x30
	AttrObjectID            AttributeType = 0x40
	AttrSecurityDescriptor  AttributeType = 0x50
	AttrVolumeName          AttributeType = 0x60
	AttrVolumeInformation   AttributeType = 0x70
	AttrData                AttributeType = 0x80
	AttrIndexRoot           AttributeType = 0x90
	AttrIndexAllocation     AttributeType = 0xa0
	AttrBitmap              AttributeType = 0xb0
	AttrReparsePoint        AttributeType = 0xc0
	AttrEAInformation       AttributeType = 0xd0
	AttrEA                  AttributeType = 0xe0
	AttrPropertySet         AttributeType = 0xf0
	AttrLoggedUtilityStream AttributeType = 0x100
	AttrUserDefined         AttributeType = 0x1000
	AttrEnd                 AttributeType = 0xffffffff
)

var attrNames = map[AttributeType]string{
	AttrUnused:              "$UNUSED",
	AttrStandardInformation: "$STANDARD_INFORMATION",
	AttrAttributeList:       "$ATTRIBUTE_LIST",
	AttrFileName:            "$FILE_NAME",
	AttrObjectID:            "$OBJECT_ID",
	AttrSecurityDescriptor:  "$SECURITY_DESCRIPTOR",
	AttrVolumeName:          "$VOLUME_NAME",
	AttrVolumeInformation:   "$VOLUME_INFORMATION",
	AttrData:                "$DATA",
	AttrIndexRoot:           "$INDEX_ROOT",
	AttrIndexAllocation:     "$INDEX_ALLOCATION",
	AttrBitmap:              "$BITMAP",
	AttrReparsePoint:        "$REPARSE_POINT",
	AttrEAInformation:       "$EA_INFORMATION",
	AttrEA:                  "$EA",
	AttrPropertySet:         "$PROPERTY_SET",
	AttrLoggedUtilityStream: "$LOGGED_UTILITY_STREAM",
	AttrUserDefined:         "$USER_DEFINED",
	AttrEnd:                 "$END",
}

func (t AttributeType) String() string {
	if s, ok := attrNames[t]; ok {
		return s
	}
	return fmt.Sprintf("0x%x", uint32(t))
}

//Known reports whether the engine has a name for this type code
func (t AttributeType) Known() bool {
	_, ok := attrNames[t]
	return ok
}

func (t AttributeType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

//Reference is a file reference: 48 bits of record index and 16 bits of sequence
type Reference struct {
	Index    uint64 `json:"index"`
	Sequence uint16 `json:"sequence"`
}

//NewReference splits a packed 64 bit file reference
func NewReference(v uint64) Reference {
	return Reference{
		Index:    v & 0xffffffffffff,
		Sequence: uint16(v >> 48),
	}
}

//IsZero is true for the reference stored in base records
func (r Reference) IsZero() bool {
	return r.Index == 0 && r.Sequence == 0
}

func (r Reference) String() string {
	return fmt.Sprintf("%d-%d", r.Index, r.Sequence)
}
