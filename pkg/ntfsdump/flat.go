package ntfsdump

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

//DefaultRecordSize is used for flat copies when nothing else is known
const DefaultRecordSize = 1024

//FlatReader reads records from an extracted $MFT file, where record n starts at n * record size
type FlatReader struct {
	mu         sync.Mutex
	file       afero.File
	size       int64
	recordSize int64
}

//NewFlatReader opens path on fs. A recordSize of 0 uses DefaultRecordSize.
func NewFlatReader(fs afero.Fs, path string, recordSize int) (*FlatReader, error) {
	if recordSize == 0 {
		recordSize = DefaultRecordSize
	}
	if recordSize < 0 || !ValidRecordSize(uint64(recordSize)) {
		return nil, errors.Wrapf(ErrBadGeometry, "record size %d", recordSize)
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	return &FlatReader{
		file:       f,
		size:       st.Size(),
		recordSize: int64(recordSize),
	}, nil
}

func (f *FlatReader) RecordSize() int {
	return int(f.recordSize)
}

//Count of whole records in the file
func (f *FlatReader) Count() (uint64, error) {
	return uint64(f.size / f.recordSize), nil
}

func (f *FlatReader) ReadRecord(index uint64) ([]byte, error) {
	offset := int64(index) * f.recordSize
	if offset+f.recordSize > f.size {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "record %d is past the end of the file", index)
	}
	buf := make([]byte, f.recordSize)

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.file.ReadAt(buf, offset); err != nil {
		return nil, errors.Wrapf(err, "reading record %d", index)
	}
	return buf, nil
}

func (f *FlatReader) Close() error {
	return f.file.Close()
}
