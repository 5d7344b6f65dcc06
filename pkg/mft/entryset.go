package mft

import (
	"github.com/Velocidex/ordereddict"
)

//EntryAttributeSet is every attribute of one logical file entry, gathered from the base
//record and all its extension records. Attributes are grouped by type, types in first seen
//order and instances in discovery order inside a type.
type EntryAttributeSet struct {
	Index  uint64
	Header RecordHeader
	//Records that were merged, base record first
	Records []Reference
	Issues  []Issue

	order []AttributeType
	attrs map[AttributeType][]Attribute
}

func newEntryAttributeSet(index uint64) *EntryAttributeSet {
	return &EntryAttributeSet{
		Index:   index,
		Records: []Reference{},
		Issues:  []Issue{},
		order:   []AttributeType{},
		attrs:   map[AttributeType][]Attribute{},
	}
}

func (s *EntryAttributeSet) add(a Attribute) {
	t := a.Type()
	if _, ok := s.attrs[t]; !ok {
		s.order = append(s.order, t)
	}
	s.attrs[t] = append(s.attrs[t], a)
}

func (s *EntryAttributeSet) issue(i Issue) {
	s.Issues = append(s.Issues, i)
}

//Reference of the base record
func (s *EntryAttributeSet) Reference() Reference {
	return s.Header.Reference(s.Index)
}

//Types present in the set, first seen first
func (s *EntryAttributeSet) Types() []AttributeType {
	r := make([]AttributeType, len(s.order))
	copy(r, s.order)
	return r
}

//Get returns the instances of one type, or nil if there are none
func (s *EntryAttributeSet) Get(t AttributeType) []Attribute {
	v, ok := s.attrs[t]
	if !ok {
		return nil
	}
	r := make([]Attribute, len(v))
	copy(r, v)
	return r
}

//Len is the number of attribute instances
func (s *EntryAttributeSet) Len() int {
	n := 0
	for _, v := range s.attrs {
		n += len(v)
	}
	return n
}

func (s *EntryAttributeSet) StandardInformation() []StandardInformation {
	r := []StandardInformation{}
	for _, a := range s.attrs[AttrStandardInformation] {
		if v, ok := a.Value.(StandardInformation); ok {
			r = append(r, v)
		}
	}
	return r
}

func (s *EntryAttributeSet) FileNames() []FileName {
	r := []FileName{}
	for _, a := range s.attrs[AttrFileName] {
		if v, ok := a.Value.(FileName); ok {
			r = append(r, v)
		}
	}
	return r
}

//AttributeList joins the entries of every decoded $ATTRIBUTE_LIST
func (s *EntryAttributeSet) AttributeList() AttributeList {
	r := AttributeList{}
	for _, a := range s.attrs[AttrAttributeList] {
		if v, ok := a.Value.(AttributeList); ok {
			r = append(r, v...)
		}
	}
	return r
}

//PreferredName picks a long name over the DOS 8.3 one. ok is false if there are no names.
func (s *EntryAttributeSet) PreferredName() (FileName, bool) {
	names := s.FileNames()
	if len(names) == 0 {
		return FileName{}, false
	}
	for _, n := range names {
		if n.Namespace != Dos {
			return n, true
		}
	}
	return names[0], true
}

//HasIssue checks for an issue of the given kind
func (s *EntryAttributeSet) HasIssue(k IssueKind) bool {
	for _, i := range s.Issues {
		if i.Kind == k {
			return true
		}
	}
	return false
}

//FixupOK is false when any merged record failed sector validation
func (s *EntryAttributeSet) FixupOK() bool {
	return !s.HasIssue(FixupMismatch) && !s.HasIssue(FixupOutOfRange)
}

func (s *EntryAttributeSet) InUse() bool {
	return s.Header.HasFlag(InUse)
}

func (s *EntryAttributeSet) IsDirectory() bool {
	return s.Header.HasFlag(Directory)
}

//DataSize is the logical size of the unnamed $DATA stream
func (s *EntryAttributeSet) DataSize() uint64 {
	for _, a := range s.attrs[AttrData] {
		if a.Header.Name != "" {
			continue
		}
		if !a.Header.NonResident {
			return uint64(a.Header.ContentLength)
		}
		if a.Header.StartVCN == 0 {
			return a.Header.RealSize
		}
	}
	return 0
}

//ToDict is the ordered form used for output
func (s *EntryAttributeSet) ToDict() *ordereddict.Dict {
	attrs := ordereddict.NewDict()
	for _, t := range s.order {
		attrs.Set(t.String(), s.attrs[t])
	}
	d := ordereddict.NewDict()
	d.Set("index", s.Index)
	d.Set("sequence", s.Header.Sequence)
	d.Set("flags", s.Header.Flags)
	d.Set("base_record", s.Header.BaseRecord)
	d.Set("records", s.Records)
	d.Set("issues", s.Issues)
	d.Set("attributes", attrs)
	return d
}

func (s *EntryAttributeSet) MarshalJSON() ([]byte, error) {
	return s.ToDict().MarshalJSON()
}
