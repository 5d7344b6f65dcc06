package export

import (
	"io"
	"strings"
	"sync"

	"github.com/Velocidex/ordereddict"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

//IDPrefix is the type part of every exported row id
const IDPrefix = "mft"

//Row is anything that can be flattened into an ordered output row
type Row interface {
	ToDict() *ordereddict.Dict
}

//Writer writes rows as JSON lines, optionally gzip compressed. Safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	gz     *gzip.Writer
	closer io.Closer
	count  int
	closed bool
}

//NewWriter writes to out. out is not closed by Close.
func NewWriter(out io.Writer, compress bool) *Writer {
	w := &Writer{out: out}
	if compress {
		w.gz = gzip.NewWriter(out)
		w.out = w.gz
	}
	return w
}

//Create makes the file at path on fs. A .gz suffix is added when compressing.
func Create(fs afero.Fs, path string, compress bool) (*Writer, error) {
	if compress && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}
	f, err := fs.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	w := NewWriter(f, compress)
	w.closer = f
	return w, nil
}

//NewID returns a fresh row id
func NewID() string {
	return IDPrefix + "--" + uuid.New().String()
}

//Write adds one row, with a new id as its first key
func (w *Writer) Write(r Row) error {
	d := r.ToDict()
	row := ordereddict.NewDict()
	row.Set("id", NewID())
	for _, k := range d.Keys() {
		if k == "id" {
			continue
		}
		v, _ := d.Get(k)
		row.Set(k, v)
	}
	b, err := row.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "encoding row")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.out.Write(append(b, '\n')); err != nil {
		return errors.Wrap(err, "writing row")
	}
	w.count++
	return nil
}

//Count of rows written so far
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

//Close flushes the compressor and closes the file if the writer created it. Only the
//first call does anything.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return errors.Wrap(err, "closing gzip stream")
		}
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
