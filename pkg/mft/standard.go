package mft

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	standardInfoMinSize = 36
	standardInfoV1Size  = 48
	standardInfoV3Size  = 72
)

//StandardInformation is the $STANDARD_INFORMATION attribute. The owner, security, quota and
//usn fields only exist in the 72 byte (NTFS 3.x) layout and stay zero otherwise.
type StandardInformation struct {
	Created        uint64          `json:"created"`
	Modified       uint64          `json:"modified"`
	Changed        uint64          `json:"changed"`
	Accessed       uint64          `json:"accessed"`
	RawAttributes  uint32          `json:"-"`
	FileAttributes []FileAttribute `json:"file_attributes"`
	MaxVersions    uint32          `json:"max_versions"`
	Version        uint32          `json:"version"`
	ClassID        uint32          `json:"class_id"`
	OwnerID        uint32          `json:"owner_id"`
	SecurityID     uint32          `json:"security_id"`
	QuotaCharged   uint64          `json:"quota_charged"`
	USN            uint64          `json:"usn"`
	ExtendedLayout bool            `json:"extended_layout"`
}

//ParseStandardInformation decodes resident $STANDARD_INFORMATION content.
//The layout is picked purely by how much content there is.
func ParseStandardInformation(data []byte) (StandardInformation, error) {
	s := StandardInformation{}
	if len(data) < standardInfoMinSize {
		return s, errors.WithMessagef(ErrTruncatedAttribute, "$STANDARD_INFORMATION needs %d bytes, have %d", standardInfoMinSize, len(data))
	}
	cursor := 0
	s.Created = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	s.Modified = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	s.Changed = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	s.Accessed = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	s.RawAttributes = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	s.FileAttributes = DecodeFileAttributes(s.RawAttributes)
	cursor += 4

	if len(data) < standardInfoV1Size {
		return s, nil
	}
	s.MaxVersions = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	cursor += 4
	s.Version = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	cursor += 4
	s.ClassID = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	cursor += 4

	//old layout, nothing else to read
	if len(data) < standardInfoV3Size {
		return s, nil
	}
	s.ExtendedLayout = true
	s.OwnerID = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	cursor += 4
	s.SecurityID = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	cursor += 4
	s.QuotaCharged = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	s.USN = binary.LittleEndian.Uint64(data[cursor : cursor+8])

	return s, nil
}
