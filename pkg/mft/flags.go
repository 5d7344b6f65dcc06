package mft

//EntryFlag is one bit of the record header flags
type EntryFlag string

const (
	InUse     EntryFlag = "InUse"
	Directory EntryFlag = "Directory"
	Extend    EntryFlag = "Extend"
	Index     EntryFlag = "Index"
)

var entryFlagBits = []struct {
	bit  uint16
	flag EntryFlag
}{
	{0x1, InUse},
	{0x2, Directory},
	{0x4, Extend},
	{0x8, Index},
}

//DecodeEntryFlags maps the record header flag word to the set of flags. Unassigned bits are dropped.
func DecodeEntryFlags(v uint16) []EntryFlag {
	r := []EntryFlag{}
	for _, b := range entryFlagBits {
		if v&b.bit != 0 {
			r = append(r, b.flag)
		}
	}
	return r
}

//FileAttribute is one of the DOS style file attribute bits kept in $STANDARD_INFORMATION and $FILE_NAME
type FileAttribute string

const (
	ReadOnly   FileAttribute = "ReadOnly"
	Hidden     FileAttribute = "Hidden"
	System     FileAttribute = "System"
	Volume     FileAttribute = "Volume"
	DirectoryA FileAttribute = "Directory"
	Archive    FileAttribute = "Archive"
	Device     FileAttribute = "Device"
	Normal     FileAttribute = "Normal"
	Temporary  FileAttribute = "Temporary"
	Sparse     FileAttribute = "Sparse"
	Reparse    FileAttribute = "Reparse"
	Compressed FileAttribute = "Compressed"
	Offline    FileAttribute = "Offline"
	NotIndexed FileAttribute = "NotIndexed"
	Encrypted  FileAttribute = "Encrypted"
	Virtual    FileAttribute = "Virtual"
	IndexView  FileAttribute = "IndexView"
	Unknown    FileAttribute = "Unknown"
)

var fileAttributeBits = []struct {
	bit  uint32
	attr FileAttribute
}{
	{0x1, ReadOnly},
	{0x2, Hidden},
	{0x4, System},
	{0x8, Volume},
	{0x10, DirectoryA},
	{0x20, Archive},
	{0x40, Device},
	{0x80, Normal},
	{0x100, Temporary},
	{0x200, Sparse},
	{0x400, Reparse},
	{0x800, Compressed},
	{0x1000, Offline},
	{0x2000, NotIndexed},
	{0x4000, Encrypted},
	{0x10000, Virtual},
	//$FILE_NAME copies of the flags use these two for directories and view indexes
	{0x10000000, DirectoryA},
	{0x20000000, IndexView},
}

//DecodeFileAttributes maps an attribute bitmask to named flags in bit order.
//Any bit without a name adds a single Unknown at the end.
func DecodeFileAttributes(v uint32) []FileAttribute {
	r := []FileAttribute{}
	known := uint32(0)
	for _, b := range fileAttributeBits {
		known |= b.bit
		if v&b.bit == 0 {
			continue
		}
		if HasFileAttribute(r, b.attr) {
			continue
		}
		r = append(r, b.attr)
	}
	if v&^known != 0 {
		r = append(r, Unknown)
	}
	return r
}

//HasFileAttribute is a small helper for checking decoded flag sets
func HasFileAttribute(set []FileAttribute, a FileAttribute) bool {
	for _, v := range set {
		if v == a {
			return true
		}
	}
	return false
}

//DataFlag is one of the attribute header flags
type DataFlag string

const (
	DataCompressed DataFlag = "Compressed"
	DataEncrypted  DataFlag = "Encrypted"
	DataSparse     DataFlag = "Sparse"
)

func decodeDataFlags(v uint16) []DataFlag {
	r := []DataFlag{}
	if v&0xff != 0 {
		r = append(r, DataCompressed)
	}
	if v&0x4000 != 0 {
		r = append(r, DataEncrypted)
	}
	if v&0x8000 != 0 {
		r = append(r, DataSparse)
	}
	return r
}

//Namespace of a $FILE_NAME
type Namespace uint8

const (
	Posix Namespace = iota
	Windows
	Dos
	WindowsDos
	UnknownNamespace
)

//DecodeNamespace never fails, out of range values are UnknownNamespace
func DecodeNamespace(b byte) Namespace {
	if b > byte(WindowsDos) {
		return UnknownNamespace
	}
	return Namespace(b)
}

func (n Namespace) String() string {
	switch n {
	case Posix:
		return "Posix"
	case Windows:
		return "Windows"
	case Dos:
		return "Dos"
	case WindowsDos:
		return "WindowsDos"
	}
	return "Unknown"
}

func (n Namespace) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}
