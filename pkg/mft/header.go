package mft

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

//HeaderSize is the fixed part of a FILE record header (NTFS 3.1 layout, record index included)
const HeaderSize = 48

var fileSignature = []byte("FILE")

//RecordHeader is the fixed header at the start of every MFT record
type RecordHeader struct {
	Signature       [4]byte     `json:"-"`
	FixupOffset     uint16      `json:"fixup_offset"`
	FixupCount      uint16      `json:"fixup_count"`
	LogSequence     uint64      `json:"lsn"`
	Sequence        uint16      `json:"sequence"`
	RefCount        uint16      `json:"ref_count"`
	AttributeOffset uint16      `json:"attribute_offset"`
	RawFlags        uint16      `json:"-"`
	Flags           []EntryFlag `json:"flags"`
	UsedSize        uint32      `json:"used_size"`
	TotalSize       uint32      `json:"total_size"`
	BaseRecord      Reference   `json:"base_record"`
	NextAttributeID uint16      `json:"next_attribute_id"`
	Index           uint32      `json:"index"`
}

//ParseRecordHeader decodes the fixed header. It is a pure function over data.
func ParseRecordHeader(data []byte) (RecordHeader, error) {
	r := RecordHeader{}
	if len(data) < HeaderSize {
		return r, errors.WithMessagef(ErrTruncatedHeader, "have %d bytes, need %d", len(data), HeaderSize)
	}
	cursor := 0
	copy(r.Signature[:], data[cursor:cursor+4])
	if !bytes.Equal(r.Signature[:], fileSignature) {
		return r, errors.WithMessagef(ErrBadSignature, "got %q", r.Signature[:])
	}
	cursor += 4
	r.FixupOffset = binary.LittleEndian.Uint16(data[cursor : cursor+2])
	cursor += 2
	r.FixupCount = binary.LittleEndian.Uint16(data[cursor : cursor+2])
	cursor += 2
	r.LogSequence = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	r.Sequence = binary.LittleEndian.Uint16(data[cursor : cursor+2])
	cursor += 2
	r.RefCount = binary.LittleEndian.Uint16(data[cursor : cursor+2])
	cursor += 2
	r.AttributeOffset = binary.LittleEndian.Uint16(data[cursor : cursor+2])
	cursor += 2
	r.RawFlags = binary.LittleEndian.Uint16(data[cursor : cursor+2])
	r.Flags = DecodeEntryFlags(r.RawFlags)
	cursor += 2
	r.UsedSize = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	cursor += 4
	r.TotalSize = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	cursor += 4
	r.BaseRecord = NewReference(binary.LittleEndian.Uint64(data[cursor : cursor+8]))
	cursor += 8
	r.NextAttributeID = binary.LittleEndian.Uint16(data[cursor : cursor+2])
	cursor += 4 //2 bytes of alignment after the attribute id
	r.Index = binary.LittleEndian.Uint32(data[cursor : cursor+4])

	return r, nil
}

//HasFlag checks the decoded entry flags
func (r RecordHeader) HasFlag(f EntryFlag) bool {
	for _, v := range r.Flags {
		if v == f {
			return true
		}
	}
	return false
}

//IsBase is true when this record is not an extension of another one
func (r RecordHeader) IsBase() bool {
	return r.BaseRecord.IsZero()
}

//Reference of this record as other records would point at it
func (r RecordHeader) Reference(index uint64) Reference {
	return Reference{Index: index, Sequence: r.Sequence}
}
