package filelisting

import (
	"strings"

	"github.com/C-Sto/gomftdump/pkg/mft"
	"github.com/Velocidex/ordereddict"
)

//Entry is one timeline row, one per $FILE_NAME of a file entry
type Entry struct {
	Filename  string
	Directory string
	FullPath  string
	Extension string

	//from $STANDARD_INFORMATION
	Created  string
	Modified string
	Changed  string
	Accessed string

	//from the $FILE_NAME this row is built from
	FilenameCreated  string
	FilenameModified string
	FilenameChanged  string
	FilenameAccessed string

	Size           uint64
	Inode          uint64
	Sequence       uint16
	ParentInode    uint64
	ParentSequence uint16
	IsFile         bool
	IsDirectory    bool
	Deleted        bool
	Attributes     []mft.FileAttribute
	Namespace      mft.Namespace
	USN            uint64
	AttributeList  []string
	Issues         []mft.Issue
}

//ToDict is the ordered output form of the row
func (e Entry) ToDict() *ordereddict.Dict {
	d := ordereddict.NewDict()
	d.Set("filename", e.Filename)
	d.Set("directory", e.Directory)
	d.Set("full_path", e.FullPath)
	d.Set("extension", e.Extension)
	d.Set("created", e.Created)
	d.Set("modified", e.Modified)
	d.Set("changed", e.Changed)
	d.Set("accessed", e.Accessed)
	d.Set("filename_created", e.FilenameCreated)
	d.Set("filename_modified", e.FilenameModified)
	d.Set("filename_changed", e.FilenameChanged)
	d.Set("filename_accessed", e.FilenameAccessed)
	d.Set("size", e.Size)
	d.Set("inode", e.Inode)
	d.Set("sequence", e.Sequence)
	d.Set("parent_inode", e.ParentInode)
	d.Set("parent_sequence", e.ParentSequence)
	d.Set("is_file", e.IsFile)
	d.Set("is_directory", e.IsDirectory)
	d.Set("deleted", e.Deleted)
	d.Set("attributes", e.Attributes)
	d.Set("namespace", e.Namespace)
	d.Set("usn", e.USN)
	d.Set("attribute_list", e.AttributeList)
	d.Set("issues", e.Issues)
	return d
}

//extension after the last dot, empty when there is none
func extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return name[i+1:]
}

//Flatten turns a resolved entry into rows, leaving the path fields empty
func Flatten(set *mft.EntryAttributeSet) []Entry {
	r := []Entry{}
	si := set.StandardInformation()
	types := []string{}
	for _, t := range set.Types() {
		types = append(types, t.String())
	}

	for _, fn := range set.FileNames() {
		e := Entry{
			Filename:         fn.Name,
			FilenameCreated:  mft.FiletimeToISO(fn.Created),
			FilenameModified: mft.FiletimeToISO(fn.Modified),
			FilenameChanged:  mft.FiletimeToISO(fn.Changed),
			FilenameAccessed: mft.FiletimeToISO(fn.Accessed),
			Inode:            set.Index,
			Sequence:         set.Header.Sequence,
			ParentInode:      fn.Parent.Index,
			ParentSequence:   fn.Parent.Sequence,
			Deleted:          !set.InUse(),
			Namespace:        fn.Namespace,
			AttributeList:    types,
			Issues:           set.Issues,
		}
		if len(si) > 0 {
			e.Created = mft.FiletimeToISO(si[0].Created)
			e.Modified = mft.FiletimeToISO(si[0].Modified)
			e.Changed = mft.FiletimeToISO(si[0].Changed)
			e.Accessed = mft.FiletimeToISO(si[0].Accessed)
			e.Attributes = si[0].FileAttributes
			e.USN = si[0].USN
		}
		if len(e.Attributes) == 0 {
			e.Attributes = fn.FileAttributes
		}

		if fn.IsDirectory() || set.IsDirectory() {
			e.IsDirectory = true
		} else {
			e.IsFile = true
			e.Size = set.DataSize()
			e.Extension = extension(fn.Name)
		}
		r = append(r, e)
	}
	return r
}
