package mft

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	eaInformationSize = 8
	eaEntryMinSize    = 8
)

//ExtendedAttributeInfo is the $EA_INFORMATION summary
type ExtendedAttributeInfo struct {
	//EntrySize is the packed size of the extended attributes
	EntrySize uint32 `json:"entry_size"`
	//Count of entries that need EA knowledge to open the file
	Count uint32 `json:"count"`
	//TotalSize is the unpacked size of the extended attributes
	TotalSize uint32 `json:"total_size"`
}

//ParseExtendedAttributeInfo decodes $EA_INFORMATION content
func ParseExtendedAttributeInfo(data []byte) (ExtendedAttributeInfo, error) {
	i := ExtendedAttributeInfo{}
	if len(data) < eaInformationSize {
		return i, errors.WithMessagef(ErrTruncatedAttribute, "$EA_INFORMATION needs %d bytes, have %d", eaInformationSize, len(data))
	}
	i.EntrySize = uint32(binary.LittleEndian.Uint16(data[0:2]))
	i.Count = uint32(binary.LittleEndian.Uint16(data[2:4]))
	i.TotalSize = binary.LittleEndian.Uint32(data[4:8])
	return i, nil
}

//ExtendedAttributeEntry is one entry of an $EA attribute. Data is kept opaque.
type ExtendedAttributeEntry struct {
	//Offset to the next entry, 0 on the last one
	Offset   uint32 `json:"offset"`
	Flags    uint8  `json:"flags"`
	NameSize uint8  `json:"-"`
	DataSize uint16 `json:"data_size"`
	Name     string `json:"name"`
	Data     []byte `json:"data"`
}

//ParseExtendedAttributes decodes the chain of $EA entries. Entries decoded before an
//inconsistent one are returned with the error.
func ParseExtendedAttributes(data []byte) ([]ExtendedAttributeEntry, error) {
	entries := []ExtendedAttributeEntry{}
	cursor := 0
	for len(data)-cursor >= eaEntryMinSize {
		e := ExtendedAttributeEntry{}
		e.Offset = binary.LittleEndian.Uint32(data[cursor : cursor+4])
		e.Flags = data[cursor+4]
		e.NameSize = data[cursor+5]
		e.DataSize = binary.LittleEndian.Uint16(data[cursor+6 : cursor+8])

		nameStart := cursor + eaEntryMinSize
		nameEnd := nameStart + int(e.NameSize) + 1
		if nameEnd > len(data) {
			return entries, errors.WithMessagef(ErrInvalidLength, "ea name at %d runs past %d bytes", nameStart, len(data))
		}
		e.Name = string(bytes.TrimRight(data[nameStart:nameEnd], "\x00"))

		dataEnd := nameEnd + int(e.DataSize)
		if dataEnd > len(data) {
			return entries, errors.WithMessagef(ErrInvalidLength, "ea %q value of %d bytes runs past %d bytes", e.Name, e.DataSize, len(data))
		}
		e.Data = data[nameEnd:dataEnd]
		entries = append(entries, e)

		if e.Offset == 0 {
			break
		}
		if int(e.Offset) < dataEnd-cursor {
			return entries, errors.WithMessagef(ErrInvalidLength, "ea %q next offset %d overlaps its own %d bytes", e.Name, e.Offset, dataEnd-cursor)
		}
		cursor += int(e.Offset)
	}
	return entries, nil
}
