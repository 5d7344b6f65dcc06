package filelisting

import (
	"encoding/binary"
	"sync"
	"unicode/utf16"

	"github.com/C-Sto/gomftdump/pkg/mft"
)

const (
	recordSize = 1024
	dirFlag    = 0x10000000
	ts         = 132223104000000000
)

func ref(index uint64, seq uint16) uint64 {
	return index | uint64(seq)<<48
}

func resident(t mft.AttributeType, content []byte) []byte {
	off := 24
	b := make([]byte, (off+len(content)+7)&^7)
	binary.LittleEndian.PutUint32(b[0:], uint32(t))
	binary.LittleEndian.PutUint32(b[4:], uint32(len(b)))
	binary.LittleEndian.PutUint32(b[16:], uint32(len(content)))
	binary.LittleEndian.PutUint16(b[20:], uint16(off))
	copy(b[off:], content)
	return b
}

func standardInfo(flags uint32) []byte {
	b := make([]byte, 72)
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(b[i*8:], ts)
	}
	binary.LittleEndian.PutUint32(b[32:], flags)
	binary.LittleEndian.PutUint64(b[64:], 777)
	return resident(mft.AttrStandardInformation, b)
}

func fileName(parent uint64, name string, ns byte, flags uint32) []byte {
	u := utf16.Encode([]rune(name))
	b := make([]byte, 66+len(u)*2)
	binary.LittleEndian.PutUint64(b[0:], parent)
	for i := 1; i <= 4; i++ {
		binary.LittleEndian.PutUint64(b[i*8:], ts)
	}
	binary.LittleEndian.PutUint32(b[56:], flags)
	b[64] = byte(len(u))
	b[65] = ns
	for i, v := range u {
		binary.LittleEndian.PutUint16(b[66+i*2:], v)
	}
	return resident(mft.AttrFileName, b)
}

func record(seq, flags uint16, base uint64, attrs ...[]byte) []byte {
	data := make([]byte, recordSize)
	copy(data, "FILE")
	binary.LittleEndian.PutUint16(data[4:], 48)
	binary.LittleEndian.PutUint16(data[6:], 3)
	binary.LittleEndian.PutUint16(data[16:], seq)
	binary.LittleEndian.PutUint16(data[20:], 56)
	binary.LittleEndian.PutUint16(data[22:], flags)
	binary.LittleEndian.PutUint64(data[32:], base)
	cursor := 56
	for _, a := range attrs {
		copy(data[cursor:], a)
		cursor += len(a)
	}
	binary.LittleEndian.PutUint32(data[cursor:], 0xffffffff)
	binary.LittleEndian.PutUint32(data[24:], uint32(cursor+8))
	binary.LittleEndian.PutUint32(data[28:], recordSize)
	binary.LittleEndian.PutUint16(data[48:], 1)
	for i := 1; i <= 2; i++ {
		pos := i*512 - 2
		copy(data[48+i*2:], data[pos:pos+2])
		binary.LittleEndian.PutUint16(data[pos:], 1)
	}
	return data
}

func dir(seq uint16, parent uint64, name string) []byte {
	return record(seq, 0x3, 0, standardInfo(0x10), fileName(parent, name, 1, dirFlag))
}

func file(seq, flags uint16, parent uint64, name string, data string) []byte {
	return record(seq, flags, 0, standardInfo(0x20), fileName(parent, name, 3, 0x20), resident(mft.AttrData, []byte(data)))
}

//tree is a small volume:
//  .\Users\alice\notes.txt, a deleted .\Users\alice\gone.tmp, a file whose parent was reused,
//  a file with a long and a short name and two directories that are each other's parent
type tree struct {
	mu      sync.Mutex
	records map[uint64][]byte
	reads   int
}

func newTree() *tree {
	t := &tree{records: map[uint64][]byte{
		5:  dir(5, ref(5, 5), "."),
		30: dir(1, ref(5, 5), "Users"),
		31: dir(1, ref(30, 1), "alice"),
		40: record(1, 0x1, 0,
			standardInfo(0x20),
			fileName(ref(31, 1), "notes.txt", 3, 0x20),
			resident(mft.AttrData, []byte("hello world")),
		),
		41: file(1, 0x1, ref(50, 2), "old.doc", "x"),
		42: file(4, 0x0, ref(31, 1), "gone.tmp", "tmp"),
		43: record(1, 0x1, ref(40, 1), resident(mft.AttrData, []byte("extension"))),
		44: record(1, 0x1, 0,
			standardInfo(0x20),
			fileName(ref(31, 1), "LongFileName.txt", 1, 0x20),
			fileName(ref(31, 1), "LONGFI~1.TXT", 2, 0x20),
			resident(mft.AttrData, []byte("12345")),
		),
		50: dir(3, ref(5, 5), "reused"),
		60: dir(1, ref(61, 1), "a"),
		61: dir(1, ref(60, 1), "b"),
		62: file(1, 0x1, ref(60, 1), "loop.txt", "loop"),
	}}
	return t
}

//ReadRecord returns an empty slot for anything not in the tree
func (t *tree) ReadRecord(index uint64) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads++
	if b, ok := t.records[index]; ok {
		return b, nil
	}
	return make([]byte, recordSize), nil
}
