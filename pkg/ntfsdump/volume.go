package ntfsdump

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

//VolumePath turns a bare drive letter ("c" or "C:") into a raw device path. Anything else is returned as is.
func VolumePath(s string) string {
	t := strings.TrimSuffix(s, `\`)
	if len(t) == 2 && t[1] == ':' {
		t = t[:1]
	}
	if len(t) == 1 && isLetter(t[0]) {
		return `\\.\` + strings.ToUpper(t) + ":"
	}
	return s
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

//Open returns a record source of the given kind. Flat copies and volume images are read
//through fs, drive letters are opened as raw devices.
func Open(fs afero.Fs, kind, path string, recordSize int) (Source, error) {
	switch kind {
	case "flat", "":
		return NewFlatReader(fs, path, recordSize)
	case "volume":
		handle, err := openVolume(fs, path)
		if err != nil {
			return nil, err
		}
		v, err := NewVolumeReader(handle)
		if err != nil {
			handle.Close()
			return nil, err
		}
		if recordSize != 0 && recordSize != v.RecordSize() {
			v.log.Warnf("ignoring record size %d, volume uses %d", recordSize, v.RecordSize())
		}
		if err := v.LoadMFTRuns(); err != nil {
			v.log.Warnf("using bootstrap run for $MFT: %s", err)
		}
		return v, nil
	}
	return nil, errors.Errorf("unknown source kind %q", kind)
}

//OpenBootSector reads just the boot sector of a volume or image
func OpenBootSector(fs afero.Fs, path string) (BootSector, error) {
	handle, err := openVolume(fs, path)
	if err != nil {
		return BootSector{}, err
	}
	defer handle.Close()
	buf := make([]byte, BootSectorSize)
	if _, err := io.ReadFull(handle, buf); err != nil {
		return BootSector{}, errors.Wrapf(err, "reading boot sector of %s", path)
	}
	return ParseBootSector(buf)
}

type readSeekCloser interface {
	io.ReadSeeker
	io.Closer
}

func openVolume(fs afero.Fs, path string) (readSeekCloser, error) {
	if VolumePath(path) != path || strings.HasPrefix(path, `\\.\`) {
		f, err := OpenVolume(path)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	f, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}
