package ntfsdump

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

//OpenVolume opens a raw volume for reading. Drive letters are turned into device paths.
func OpenVolume(path string) (*os.File, error) {
	path = VolumePath(path)
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, errors.Wrapf(err, "volume path %s", path)
	}
	h, err := windows.CreateFile(
		p,                    //filename
		windows.GENERIC_READ, //desiredaccess
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE, //sharemode
		nil,                   //security attribs
		windows.OPEN_EXISTING, //creation disposition
		0,                     //flags and attribs
		0)                     //templatefile
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return os.NewFile(uintptr(h), path), nil
}
