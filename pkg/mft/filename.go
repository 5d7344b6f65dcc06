package mft

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const fileNameFixedSize = 66

//FileName is the $FILE_NAME attribute
type FileName struct {
	Parent         Reference       `json:"parent"`
	Created        uint64          `json:"created"`
	Modified       uint64          `json:"modified"`
	Changed        uint64          `json:"changed"`
	Accessed       uint64          `json:"accessed"`
	AllocatedSize  uint64          `json:"allocated_size"`
	RealSize       uint64          `json:"real_size"`
	RawAttributes  uint32          `json:"-"`
	FileAttributes []FileAttribute `json:"file_attributes"`
	Reparse        uint32          `json:"reparse"`
	NameLength     uint8           `json:"-"`
	Namespace      Namespace       `json:"namespace"`
	Name           string          `json:"name"`
}

//ParseFileName decodes resident $FILE_NAME content
func ParseFileName(data []byte) (FileName, error) {
	f := FileName{}
	if len(data) < fileNameFixedSize {
		return f, errors.WithMessagef(ErrTruncatedAttribute, "$FILE_NAME needs %d bytes, have %d", fileNameFixedSize, len(data))
	}
	cursor := 0
	f.Parent = NewReference(binary.LittleEndian.Uint64(data[cursor : cursor+8]))
	cursor += 8
	f.Created = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	f.Modified = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	f.Changed = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	f.Accessed = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	f.AllocatedSize = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	f.RealSize = binary.LittleEndian.Uint64(data[cursor : cursor+8])
	cursor += 8
	f.RawAttributes = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	f.FileAttributes = DecodeFileAttributes(f.RawAttributes)
	cursor += 4
	f.Reparse = binary.LittleEndian.Uint32(data[cursor : cursor+4])
	cursor += 4
	f.NameLength = data[cursor]
	f.Namespace = DecodeNamespace(data[cursor+1])
	cursor += 2

	end := cursor + int(f.NameLength)*2
	if end > len(data) {
		return f, errors.WithMessagef(ErrInvalidLength, "name of %d chars runs past %d bytes of content", f.NameLength, len(data))
	}
	f.Name = utf16ToString(data[cursor:end])
	return f, nil
}

//IsDirectory uses the directory bit kept in the name attribute
func (f FileName) IsDirectory() bool {
	return HasFileAttribute(f.FileAttributes, DirectoryA)
}
