package mft

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

//FixupStride is the distance between protected sector ends. NTFS always uses 512 regardless of the device sector size.
const FixupStride = 512

//RawRecord is a fixed size record buffer as returned by a RecordReader. The data is never modified.
type RawRecord struct {
	Index uint64
	Data  []byte
}

//Size is the record size of the volume this record was read from
func (r RawRecord) Size() int {
	return len(r.Data)
}

//FixupResult describes what happened while applying the update sequence array
type FixupResult struct {
	//USN is the update sequence number every protected sector end should hold
	USN uint16
	//Saved are the original sector end values, one per sector
	Saved []uint16
	//Failed lists the sectors whose last two bytes did not hold the USN
	Failed []int
}

//OK is true when every protected sector validated
func (f FixupResult) OK() bool {
	return len(f.Failed) == 0
}

//ApplyFixup validates and repairs a copy of raw using the update sequence array at offset.
//count is the header field, which includes the USN itself. Sectors that fail validation are
//left as they are and reported in FixupResult.Failed; that is never an error by itself.
func ApplyFixup(raw []byte, offset, count uint16) ([]byte, FixupResult, error) {
	data := make([]byte, len(raw))
	copy(data, raw)
	res := FixupResult{}

	if count == 0 {
		return data, res, nil
	}
	end := int(offset) + int(count)*2
	if end > len(data) {
		return data, res, errors.WithMessagef(ErrFixupOutOfRange, "offset %d count %d record size %d", offset, count, len(data))
	}

	res.USN = binary.LittleEndian.Uint16(data[offset : offset+2])
	for i := 1; i < int(count); i++ {
		p := int(offset) + i*2
		res.Saved = append(res.Saved, binary.LittleEndian.Uint16(data[p:p+2]))
	}

	sectors := len(data) / FixupStride
	if len(res.Saved) < sectors {
		sectors = len(res.Saved)
	}
	for i := 0; i < sectors; i++ {
		pos := (i+1)*FixupStride - 2
		//never write over the array itself
		if pos+2 > int(offset) && pos < end {
			res.Failed = append(res.Failed, i)
			continue
		}
		if binary.LittleEndian.Uint16(data[pos:pos+2]) != res.USN {
			res.Failed = append(res.Failed, i)
			continue
		}
		binary.LittleEndian.PutUint16(data[pos:pos+2], res.Saved[i])
	}
	return data, res, nil
}
