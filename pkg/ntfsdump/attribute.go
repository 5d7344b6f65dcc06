package ntfsdump

import (
	"github.com/pkg/errors"
)

//Run is a contiguous extent of a non resident attribute, in clusters.
//Sparse runs have no backing clusters and read as zeroes.
type Run struct {
	Offset int64
	Length int64
	Sparse bool
}

//DecodeRunList decodes the mapping pairs of a non resident attribute. Each pair starts with a
//header byte, low nibble the size of the length field, high nibble the size of the signed
//offset field, which is relative to the previous run. A zero header ends the list.
func DecodeRunList(data []byte) ([]Run, error) {
	runs := []Run{}
	prev := int64(0)
	cursor := 0
	for cursor < len(data) {
		head := data[cursor]
		if head == 0 {
			return runs, nil
		}
		lenSize := int(head & 0x0f)
		offSize := int(head >> 4)
		cursor++
		if lenSize == 0 || lenSize > 8 || offSize > 8 {
			return runs, errors.Wrapf(ErrBadRun, "header 0x%02x at %d", head, cursor-1)
		}
		if cursor+lenSize+offSize > len(data) {
			return runs, errors.Wrapf(ErrShortRunList, "run at %d needs %d bytes", cursor-1, lenSize+offSize+1)
		}

		length := int64(0)
		for i := lenSize - 1; i >= 0; i-- {
			length = length<<8 | int64(data[cursor+i])
		}
		cursor += lenSize
		if length <= 0 {
			return runs, errors.Wrapf(ErrBadRun, "run at %d has length %d", cursor-lenSize-1, length)
		}

		r := Run{Length: length}
		if offSize == 0 {
			r.Sparse = true
		} else {
			off := int64(int8(data[cursor+offSize-1]))
			for i := offSize - 2; i >= 0; i-- {
				off = off<<8 | int64(data[cursor+i])
			}
			prev += off
			r.Offset = prev
		}
		cursor += offSize
		runs = append(runs, r)
	}
	return runs, nil
}

//Clusters is the total number of clusters covered by the runs
func Clusters(runs []Run) int64 {
	n := int64(0)
	for _, r := range runs {
		n += r.Length
	}
	return n
}

//locate maps a virtual cluster number onto a run. ok is false when vcn is past the last run.
func locate(runs []Run, vcn int64) (run Run, into int64, ok bool) {
	start := int64(0)
	for _, r := range runs {
		if vcn < start+r.Length {
			return r, vcn - start, true
		}
		start += r.Length
	}
	return Run{}, 0, false
}
