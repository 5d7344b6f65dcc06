//go:build !windows

package ntfsdump

import (
	"os"

	"github.com/pkg/errors"
)

//OpenVolume opens a block device or a full volume image for reading
func OpenVolume(path string) (*os.File, error) {
	f, err := os.Open(VolumePath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}
