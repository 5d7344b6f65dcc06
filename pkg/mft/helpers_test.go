package mft

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/pkg/errors"
)

const testRecordSize = 1024

func align8(n int) int {
	return (n + 7) &^ 7
}

func utf16le(s string) []byte {
	u := utf16.Encode([]rune(s))
	b := make([]byte, len(u)*2)
	for i, v := range u {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}

func packRef(index uint64, seq uint16) uint64 {
	return index | uint64(seq)<<48
}

//testRecord builds a protected FILE record the way it sits on disk
type testRecord struct {
	sequence uint16
	flags    uint16
	base     uint64
	usn      uint16
	attrs    [][]byte
}

func (r testRecord) bytes(index uint32) []byte {
	data := make([]byte, testRecordSize)
	copy(data, "FILE")
	count := testRecordSize/FixupStride + 1
	fixupOffset := 48
	attrOffset := align8(fixupOffset + count*2)

	cursor := attrOffset
	for _, a := range r.attrs {
		copy(data[cursor:], a)
		cursor += len(a)
	}
	binary.LittleEndian.PutUint32(data[cursor:], uint32(AttrEnd))
	used := cursor + 8

	binary.LittleEndian.PutUint16(data[4:], uint16(fixupOffset))
	binary.LittleEndian.PutUint16(data[6:], uint16(count))
	binary.LittleEndian.PutUint64(data[8:], 0x6e03bc8b6)
	binary.LittleEndian.PutUint16(data[16:], r.sequence)
	binary.LittleEndian.PutUint16(data[18:], 1)
	binary.LittleEndian.PutUint16(data[20:], uint16(attrOffset))
	binary.LittleEndian.PutUint16(data[22:], r.flags)
	binary.LittleEndian.PutUint32(data[24:], uint32(used))
	binary.LittleEndian.PutUint32(data[28:], testRecordSize)
	binary.LittleEndian.PutUint64(data[32:], r.base)
	binary.LittleEndian.PutUint16(data[40:], uint16(len(r.attrs)))
	binary.LittleEndian.PutUint32(data[44:], index)

	usn := r.usn
	if usn == 0 {
		usn = 1
	}
	binary.LittleEndian.PutUint16(data[fixupOffset:], usn)
	for i := 1; i < count; i++ {
		pos := i*FixupStride - 2
		copy(data[fixupOffset+i*2:fixupOffset+i*2+2], data[pos:pos+2])
		binary.LittleEndian.PutUint16(data[pos:], usn)
	}
	return data
}

func residentAttr(t AttributeType, name string, content []byte) []byte {
	n := utf16le(name)
	contentOffset := align8(residentHeaderSize + len(n))
	length := align8(contentOffset + len(content))
	b := make([]byte, length)
	binary.LittleEndian.PutUint32(b[0:], uint32(t))
	binary.LittleEndian.PutUint32(b[4:], uint32(length))
	b[9] = byte(len(n) / 2)
	binary.LittleEndian.PutUint16(b[10:], residentHeaderSize)
	binary.LittleEndian.PutUint32(b[16:], uint32(len(content)))
	binary.LittleEndian.PutUint16(b[20:], uint16(contentOffset))
	copy(b[residentHeaderSize:], n)
	copy(b[contentOffset:], content)
	return b
}

func nonResidentAttr(t AttributeType, startVCN, realSize uint64, runs []byte) []byte {
	length := align8(nonResidentHeaderSize + len(runs))
	b := make([]byte, length)
	binary.LittleEndian.PutUint32(b[0:], uint32(t))
	binary.LittleEndian.PutUint32(b[4:], uint32(length))
	b[8] = 1
	binary.LittleEndian.PutUint16(b[10:], nonResidentHeaderSize)
	binary.LittleEndian.PutUint64(b[16:], startVCN)
	binary.LittleEndian.PutUint16(b[32:], nonResidentHeaderSize)
	binary.LittleEndian.PutUint64(b[40:], align8u(realSize))
	binary.LittleEndian.PutUint64(b[48:], realSize)
	binary.LittleEndian.PutUint64(b[56:], realSize)
	copy(b[nonResidentHeaderSize:], runs)
	return b
}

func align8u(n uint64) uint64 {
	return (n + 7) &^ 7
}

func standardInfoContent(ts uint64, flags uint32) []byte {
	b := make([]byte, 72)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(b[i*8:], ts)
	}
	binary.LittleEndian.PutUint32(b[32:], flags)
	return b
}

func fileNameContent(parent uint64, name string, ns byte, flags uint32) []byte {
	n := utf16le(name)
	b := make([]byte, fileNameFixedSize+len(n))
	binary.LittleEndian.PutUint64(b[0:], parent)
	for i := 1; i <= 4; i++ {
		binary.LittleEndian.PutUint64(b[i*8:], 132000000000000000)
	}
	binary.LittleEndian.PutUint64(b[40:], 4096)
	binary.LittleEndian.PutUint64(b[48:], 1234)
	binary.LittleEndian.PutUint32(b[56:], flags)
	b[64] = byte(len(n) / 2)
	b[65] = ns
	copy(b[66:], n)
	return b
}

func listEntry(t AttributeType, ref uint64, id uint16) []byte {
	b := make([]byte, 32)
	binary.LittleEndian.PutUint32(b[0:], uint32(t))
	binary.LittleEndian.PutUint16(b[4:], 32)
	b[7] = 26
	binary.LittleEndian.PutUint64(b[16:], ref)
	binary.LittleEndian.PutUint16(b[24:], id)
	return b
}

func concat(parts ...[]byte) []byte {
	r := []byte{}
	for _, p := range parts {
		r = append(r, p...)
	}
	return r
}

//memReader serves records from memory and counts every read
type memReader struct {
	records map[uint64][]byte
	calls   map[uint64]int
	total   int
}

func newMemReader() *memReader {
	return &memReader{records: map[uint64][]byte{}, calls: map[uint64]int{}}
}

func (m *memReader) put(index uint64, r testRecord) {
	m.records[index] = r.bytes(uint32(index))
}

func (m *memReader) ReadRecord(index uint64) ([]byte, error) {
	m.total++
	m.calls[index]++
	b, ok := m.records[index]
	if !ok {
		return nil, errors.Errorf("no record %d", index)
	}
	return b, nil
}

type staticNonResident struct {
	content []byte
	err     error
}

func (s staticNonResident) ReadNonResident(runs []byte, size uint64) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.content, nil
}
