package mft

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const attributeListEntryMinSize = 26

//AttributeListEntry points at the record that holds one attribute instance of the entry
type AttributeListEntry struct {
	Type        AttributeType `json:"type"`
	Length      uint16        `json:"length"`
	NameLength  uint8         `json:"-"`
	NameOffset  uint8         `json:"-"`
	Name        string        `json:"name,omitempty"`
	StartVCN    uint64        `json:"start_vcn"`
	Record      Reference     `json:"record"`
	AttributeID uint16        `json:"attribute_id"`
}

//AttributeList is the decoded content of an $ATTRIBUTE_LIST
type AttributeList []AttributeListEntry

//ParseAttributeList decodes list entries until fewer bytes remain than an entry needs.
//On an inconsistent entry the entries decoded so far are returned along with the error.
func ParseAttributeList(data []byte) (AttributeList, error) {
	entries := AttributeList{}
	cursor := 0
	for len(data)-cursor >= attributeListEntryMinSize {
		e := AttributeListEntry{}
		e.Type = AttributeType(binary.LittleEndian.Uint32(data[cursor : cursor+4]))
		e.Length = binary.LittleEndian.Uint16(data[cursor+4 : cursor+6])
		if e.Length == 0 {
			//zero padding after the last entry
			break
		}
		if int(e.Length) < attributeListEntryMinSize || cursor+int(e.Length) > len(data) {
			return entries, errors.WithMessagef(ErrInvalidLength, "list entry at %d claims %d bytes, %d left", cursor, e.Length, len(data)-cursor)
		}
		entry := data[cursor : cursor+int(e.Length)]
		e.NameLength = entry[6]
		e.NameOffset = entry[7]
		e.StartVCN = binary.LittleEndian.Uint64(entry[8:16])
		e.Record = NewReference(binary.LittleEndian.Uint64(entry[16:24]))
		e.AttributeID = binary.LittleEndian.Uint16(entry[24:26])
		if e.NameLength > 0 {
			start := int(e.NameOffset)
			end := start + int(e.NameLength)*2
			if start < attributeListEntryMinSize || end > len(entry) {
				return entries, errors.WithMessagef(ErrInvalidLength, "list entry at %d has a name outside the entry", cursor)
			}
			e.Name = utf16ToString(entry[start:end])
		}
		entries = append(entries, e)
		cursor += int(e.Length)
	}
	return entries, nil
}

//External returns the distinct record references other than current, in first seen order
func (l AttributeList) External(current uint64) []Reference {
	seen := map[uint64]bool{}
	r := []Reference{}
	for _, e := range l {
		if e.Record.Index == current || seen[e.Record.Index] {
			continue
		}
		seen[e.Record.Index] = true
		r = append(r, e.Record)
	}
	return r
}
