package mft

import (
	"fmt"

	"github.com/C-Sto/gomftdump/pkg/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//RecordReader returns the raw bytes of one MFT record by index. Implementations decide
//where the bytes come from (a volume, an extracted $MFT file, memory).
type RecordReader interface {
	ReadRecord(index uint64) ([]byte, error)
}

//NonResidentReader fetches the content of a non resident attribute from its run list
type NonResidentReader interface {
	ReadNonResident(runs []byte, size uint64) ([]byte, error)
}

//Resolver turns a record index into the full attribute set of the entry it belongs to
type Resolver struct {
	reader      RecordReader
	nonResident NonResidentReader
	log         *zap.SugaredLogger
}

type Option func(*Resolver)

//WithLogger replaces the package logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l.Sugar()
		}
	}
}

//WithNonResidentReader lets the resolver follow attribute lists that are not resident
func WithNonResidentReader(n NonResidentReader) Option {
	return func(r *Resolver) {
		r.nonResident = n
	}
}

func NewResolver(reader RecordReader, opts ...Option) (*Resolver, error) {
	if reader == nil {
		return nil, ErrNoReader
	}
	r := &Resolver{
		reader: reader,
		log:    logger.Logger.Sugar(),
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

//Record reads and decodes a single record without following its attribute list
func (r *Resolver) Record(index uint64) (Record, error) {
	data, err := r.reader.ReadRecord(index)
	if err != nil {
		return Record{Index: index}, errors.Wrapf(err, "reading record %d", index)
	}
	return DecodeRecord(RawRecord{Index: index, Data: data})
}

//Resolve builds the attribute set of the entry whose base record is at index. Records named
//by attribute lists are fetched breadth first, each index at most once, so self references
//and cycles between extension records terminate. Only failures on the base record are
//returned as errors. Problems with extension records are recorded as issues.
func (r *Resolver) Resolve(index uint64) (*EntryAttributeSet, error) {
	base, err := r.Record(index)
	if err != nil {
		return nil, err
	}
	if !base.Header.IsBase() {
		r.log.Debugf("record %d is an extension of %s", index, base.Header.BaseRecord)
	}

	set := newEntryAttributeSet(index)
	set.Header = base.Header

	visited := map[uint64]bool{index: true}
	queue := []Reference{}

	merge := func(rec Record) {
		set.Records = append(set.Records, rec.Reference())
		for _, i := range rec.Issues {
			set.issue(i)
		}
		for _, a := range rec.Attributes {
			if a.Type() == AttrAttributeList {
				a = r.loadAttributeList(a, set)
				if list, ok := a.Value.(AttributeList); ok {
					for _, ref := range list.External(rec.Index) {
						if visited[ref.Index] {
							continue
						}
						visited[ref.Index] = true
						queue = append(queue, ref)
					}
				}
			}
			set.add(a)
		}
	}

	merge(base)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]

		rec, err := r.Record(ref.Index)
		if err != nil {
			kind := ExtensionUnreadable
			if errors.Cause(err) == ErrBadSignature || errors.Cause(err) == ErrTruncatedHeader {
				kind = ExtensionInvalid
			}
			r.log.Warnf("entry %d: extension record %s: %s", index, ref, err)
			set.issue(Issue{Record: ref.Index, Kind: kind, Detail: err.Error()})
			continue
		}
		if rec.Header.Sequence != ref.Sequence {
			detail := fmt.Sprintf("list expects sequence %d, record has %d", ref.Sequence, rec.Header.Sequence)
			r.log.Warnf("entry %d: extension record %d: %s", index, ref.Index, detail)
			set.issue(Issue{Record: ref.Index, Kind: StaleReference, Detail: detail})
			continue
		}
		if rec.Header.BaseRecord.Index != index {
			r.log.Debugf("entry %d: extension record %d names %s as its base", index, ref.Index, rec.Header.BaseRecord)
		}
		merge(rec)
	}

	if len(set.Issues) > 0 {
		r.log.Debugf("entry %d resolved from %d records with %d issues", index, len(set.Records), len(set.Issues))
	}
	return set, nil
}

//loadAttributeList fills in the value of a non resident attribute list when a reader is available
func (r *Resolver) loadAttributeList(a Attribute, set *EntryAttributeSet) Attribute {
	if !a.Header.NonResident {
		return a
	}
	if r.nonResident == nil {
		set.issue(Issue{Record: a.Record.Index, Kind: NonResidentUnavailable, Detail: "$ATTRIBUTE_LIST is non resident"})
		return a
	}
	content, err := r.nonResident.ReadNonResident(a.Runs, a.Header.RealSize)
	if err != nil {
		set.issue(Issue{Record: a.Record.Index, Kind: NonResidentUnavailable, Detail: err.Error()})
		return a
	}
	list, err := ParseAttributeList(content)
	a.Value = list
	if err != nil {
		a.Err = err
		set.issue(Issue{Record: a.Record.Index, Kind: DecodeFailure, Detail: "$ATTRIBUTE_LIST: " + err.Error()})
	}
	return a
}
