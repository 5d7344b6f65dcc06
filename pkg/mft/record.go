package mft

import (
	"fmt"
)

//Record is one physical record run through fixup, header and attribute decoding
type Record struct {
	Index      uint64
	Header     RecordHeader
	Fixup      FixupResult
	Attributes []Attribute
	Issues     []Issue
}

//Reference of the record, using the sequence from its header
func (r Record) Reference() Reference {
	return r.Header.Reference(r.Index)
}

//DecodeRecord runs a single raw record through the whole single record pipeline. Only a
//bad signature or a truncated header are errors; everything else ends up in Issues.
func DecodeRecord(raw RawRecord) (Record, error) {
	rec := Record{Index: raw.Index}

	//the header sits in the first sector, ahead of any protected bytes
	pre, err := ParseRecordHeader(raw.Data)
	if err != nil {
		return rec, err
	}

	data, fix, err := ApplyFixup(raw.Data, pre.FixupOffset, pre.FixupCount)
	rec.Fixup = fix
	if err != nil {
		rec.Issues = append(rec.Issues, Issue{Record: raw.Index, Kind: FixupOutOfRange, Detail: err.Error()})
	} else if !fix.OK() {
		rec.Issues = append(rec.Issues, Issue{Record: raw.Index, Kind: FixupMismatch, Detail: fmt.Sprintf("sectors %v", fix.Failed)})
	}

	rec.Header, err = ParseRecordHeader(data)
	if err != nil {
		return rec, err
	}
	if rec.Header.UsedSize > rec.Header.TotalSize {
		rec.Issues = append(rec.Issues, Issue{
			Record: raw.Index,
			Kind:   DecodeFailure,
			Detail: fmt.Sprintf("used size %d larger than total size %d", rec.Header.UsedSize, rec.Header.TotalSize),
		})
	}

	attrs, issues := WalkAttributes(data, rec.Header, rec.Reference())
	rec.Attributes = attrs
	rec.Issues = append(rec.Issues, issues...)
	return rec, nil
}
