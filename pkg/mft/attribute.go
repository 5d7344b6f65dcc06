package mft

import (
	"encoding/binary"
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	attributeHeaderSize   = 16
	residentHeaderSize    = 24
	nonResidentHeaderSize = 64
)

//AttributeHeader is the common attribute header plus the resident or non resident part
type AttributeHeader struct {
	Type        AttributeType `json:"type"`
	Length      uint32        `json:"length"`
	NonResident bool          `json:"non_resident"`
	NameLength  uint8         `json:"-"`
	NameOffset  uint16        `json:"-"`
	RawFlags    uint16        `json:"-"`
	Flags       []DataFlag    `json:"flags"`
	ID          uint16        `json:"id"`
	Name        string        `json:"name,omitempty"`

	//resident only
	ContentLength uint32 `json:"content_length,omitempty"`
	ContentOffset uint16 `json:"-"`
	Indexed       bool   `json:"indexed,omitempty"`

	//non resident only
	StartVCN        uint64 `json:"start_vcn,omitempty"`
	LastVCN         uint64 `json:"last_vcn,omitempty"`
	RunOffset       uint16 `json:"-"`
	CompressionUnit uint16 `json:"compression_unit,omitempty"`
	AllocatedSize   uint64 `json:"allocated_size,omitempty"`
	RealSize        uint64 `json:"real_size,omitempty"`
	InitializedSize uint64 `json:"initialized_size,omitempty"`
}

//ParseAttributeHeader decodes the header of one attribute. data is the whole attribute extent.
func ParseAttributeHeader(data []byte) (AttributeHeader, error) {
	h := AttributeHeader{}
	if len(data) < attributeHeaderSize {
		return h, errors.WithMessagef(ErrTruncatedAttribute, "header needs %d bytes, have %d", attributeHeaderSize, len(data))
	}
	h.Type = AttributeType(binary.LittleEndian.Uint32(data[0:4]))
	h.Length = binary.LittleEndian.Uint32(data[4:8])
	h.NonResident = data[8] != 0
	h.NameLength = data[9]
	h.NameOffset = binary.LittleEndian.Uint16(data[10:12])
	h.RawFlags = binary.LittleEndian.Uint16(data[12:14])
	h.Flags = decodeDataFlags(h.RawFlags)
	h.ID = binary.LittleEndian.Uint16(data[14:16])

	if h.NameLength > 0 {
		start := int(h.NameOffset)
		end := start + int(h.NameLength)*2
		if end > len(data) {
			return h, errors.WithMessagef(ErrTruncatedAttribute, "name ends at %d, attribute is %d bytes", end, len(data))
		}
		h.Name = utf16ToString(data[start:end])
	}

	if !h.NonResident {
		if len(data) < residentHeaderSize {
			return h, errors.WithMessagef(ErrTruncatedAttribute, "resident header needs %d bytes, have %d", residentHeaderSize, len(data))
		}
		h.ContentLength = binary.LittleEndian.Uint32(data[16:20])
		h.ContentOffset = binary.LittleEndian.Uint16(data[20:22])
		h.Indexed = data[22] != 0
		return h, nil
	}

	if len(data) < nonResidentHeaderSize {
		return h, errors.WithMessagef(ErrTruncatedAttribute, "non resident header needs %d bytes, have %d", nonResidentHeaderSize, len(data))
	}
	h.StartVCN = binary.LittleEndian.Uint64(data[16:24])
	h.LastVCN = binary.LittleEndian.Uint64(data[24:32])
	h.RunOffset = binary.LittleEndian.Uint16(data[32:34])
	h.CompressionUnit = binary.LittleEndian.Uint16(data[34:36])
	h.AllocatedSize = binary.LittleEndian.Uint64(data[40:48])
	h.RealSize = binary.LittleEndian.Uint64(data[48:56])
	h.InitializedSize = binary.LittleEndian.Uint64(data[56:64])
	return h, nil
}

//Attribute is one attribute instance. Value holds the typed decode result, or nil when
//the type is not modelled, the content is non resident or the decode failed.
type Attribute struct {
	Header AttributeHeader `json:"header"`
	//Record is the record this instance was found in
	Record Reference `json:"record"`
	//Content is the resident content. It is only exported for opaque attributes.
	Content []byte `json:"-"`
	//Runs are the raw run descriptors of a non resident attribute
	Runs  []byte      `json:"runs,omitempty"`
	Value interface{} `json:"value,omitempty"`
	Err   error       `json:"-"`
}

//Type is a shortcut for Header.Type
func (a Attribute) Type() AttributeType {
	return a.Header.Type
}

//Opaque is true when the attribute carries no decoded value
func (a Attribute) Opaque() bool {
	return a.Value == nil
}

//MarshalJSON adds the raw resident content of opaque attributes, base64 encoded
func (a Attribute) MarshalJSON() ([]byte, error) {
	type plain Attribute
	out := struct {
		plain
		Content []byte `json:"content,omitempty"`
	}{plain: plain(a)}
	if a.Opaque() {
		out.Content = a.Content
	}
	return json.Marshal(out)
}

type decoder struct {
	decode func([]byte) (interface{}, error)
	//partial decoders return usable values alongside an error
	partial bool
}

var decoders = map[AttributeType]decoder{
	AttrStandardInformation: {decode: func(b []byte) (interface{}, error) { return ParseStandardInformation(b) }},
	AttrFileName:            {decode: func(b []byte) (interface{}, error) { return ParseFileName(b) }},
	AttrAttributeList:       {decode: func(b []byte) (interface{}, error) { return ParseAttributeList(b) }, partial: true},
	AttrEAInformation:       {decode: func(b []byte) (interface{}, error) { return ParseExtendedAttributeInfo(b) }},
	AttrEA:                  {decode: func(b []byte) (interface{}, error) { return ParseExtendedAttributes(b) }, partial: true},
}

//decodeAttribute turns one attribute extent into an Attribute. Errors only affect this attribute.
func decodeAttribute(extent []byte, ref Reference) Attribute {
	a := Attribute{Record: ref}
	h, err := ParseAttributeHeader(extent)
	a.Header = h
	if err != nil {
		a.Err = err
		return a
	}

	if h.NonResident {
		if int(h.RunOffset) <= len(extent) && h.RunOffset >= nonResidentHeaderSize {
			a.Runs = extent[h.RunOffset:]
		} else {
			a.Err = errors.WithMessagef(ErrInvalidLength, "run offset %d outside attribute of %d bytes", h.RunOffset, len(extent))
		}
		return a
	}

	end := int(h.ContentOffset) + int(h.ContentLength)
	if end > len(extent) {
		a.Err = errors.WithMessagef(ErrTruncatedAttribute, "content ends at %d, attribute is %d bytes", end, len(extent))
		return a
	}
	a.Content = extent[h.ContentOffset:end]

	dec, ok := decoders[h.Type]
	if !ok {
		return a
	}
	v, err := dec.decode(a.Content)
	if err != nil {
		a.Err = err
		if !dec.partial {
			return a
		}
	}
	a.Value = v
	return a
}

//WalkAttributes iterates the attribute stream of a validated record. It stops at the end
//marker, at a remainder too short for an attribute header, or at an attribute that claims
//more bytes than are left. What was decoded up to that point is always returned.
func WalkAttributes(data []byte, header RecordHeader, ref Reference) ([]Attribute, []Issue) {
	attrs := []Attribute{}
	issues := []Issue{}

	limit := len(data)
	if header.UsedSize > 0 && int(header.UsedSize) <= limit {
		limit = int(header.UsedSize)
	}

	cursor := int(header.AttributeOffset)
	for {
		if cursor+4 > limit {
			break
		}
		t := AttributeType(binary.LittleEndian.Uint32(data[cursor : cursor+4]))
		if t == AttrEnd {
			break
		}
		if cursor+attributeHeaderSize > limit {
			break
		}
		length := int(binary.LittleEndian.Uint32(data[cursor+4 : cursor+8]))
		if length < attributeHeaderSize || cursor+length > limit {
			issues = append(issues, Issue{
				Record: ref.Index,
				Kind:   TruncatedAttribute,
				Detail: errors.WithMessagef(ErrTruncatedAttribute, "%s at offset %d claims %d bytes, %d left", t, cursor, length, limit-cursor).Error(),
			})
			break
		}

		a := decodeAttribute(data[cursor:cursor+length], ref)
		if a.Err != nil {
			issues = append(issues, Issue{
				Record: ref.Index,
				Kind:   DecodeFailure,
				Detail: a.Header.Type.String() + ": " + a.Err.Error(),
			})
		}
		attrs = append(attrs, a)
		cursor += length
	}
	return attrs, issues
}
