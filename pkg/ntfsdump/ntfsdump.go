package ntfsdump

import (
	"io"
	"sort"
	"sync"

	"github.com/C-Sto/gomftdump/pkg/logger"
	"github.com/C-Sto/gomftdump/pkg/mft"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

//the boot sector only tells us where the MFT starts. The first records are always contiguous,
//which is enough to read record 0 and find the real run list.
const bootstrapRecords = 24

//largest non resident content that will be pulled into memory
const maxNonResident = 64 << 20

//Source is a record reader that also knows the size and number of its records
type Source interface {
	mft.RecordReader
	RecordSize() int
	Count() (uint64, error)
	Close() error
}

//VolumeReader reads MFT records straight off an NTFS volume (a raw device or a full image).
//Every read is a seek followed by a read on one shared handle, so reads are serialized.
type VolumeReader struct {
	mu     sync.Mutex
	handle io.ReadSeeker
	closer io.Closer

	boot        BootSector
	sectorSize  int64
	clusterSize int64
	recordSize  int64
	runs        []Run

	log *zap.SugaredLogger
}

//NewVolumeReader reads the boot sector from handle and prepares the bootstrap MFT run.
//If handle is also an io.Closer, Close closes it.
func NewVolumeReader(handle io.ReadSeeker) (*VolumeReader, error) {
	v := &VolumeReader{
		handle: handle,
		log:    logger.Logger.Sugar(),
	}
	if c, ok := handle.(io.Closer); ok {
		v.closer = c
	}

	buf := make([]byte, BootSectorSize)
	if err := v.readAt(0, buf); err != nil {
		return nil, errors.Wrap(err, "reading boot sector")
	}
	sec, err := ParseBootSector(buf)
	if err != nil {
		return nil, err
	}
	v.boot = sec
	v.sectorSize = int64(sec.BytePerSector)
	v.clusterSize = int64(sec.ClusterSize())
	v.recordSize = int64(sec.RecordSize())

	if !ValidRecordSize(uint64(v.recordSize)) || v.recordSize%mft.FixupStride != 0 || v.recordSize < v.sectorSize {
		return nil, errors.Wrapf(ErrBadGeometry, "record size %d, sector size %d", v.recordSize, v.sectorSize)
	}

	clusters := (bootstrapRecords*v.recordSize + v.clusterSize - 1) / v.clusterSize
	v.runs = []Run{{Offset: sec.MFTCluster, Length: clusters}}

	v.log.Debugf("Byte/Sec: %d", sec.BytePerSector)
	v.log.Debugf("Sector/Cluster: %d", sec.SectorPerCluster)
	v.log.Debugf("Cluster of MFT: %d", sec.MFTCluster)
	v.log.Debugf("Cluster Size: %d", v.clusterSize)
	v.log.Debugf("Record Size: %d", v.recordSize)
	return v, nil
}

func (v *VolumeReader) BootSector() BootSector {
	return v.boot
}

func (v *VolumeReader) RecordSize() int {
	return int(v.recordSize)
}

//Runs currently used to map record indexes onto the volume
func (v *VolumeReader) Runs() []Run {
	v.mu.Lock()
	defer v.mu.Unlock()
	r := make([]Run, len(v.runs))
	copy(r, v.runs)
	return r
}

func (v *VolumeReader) SetRuns(runs []Run) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.runs = runs
}

//ReadRecord returns the raw, still protected, bytes of one record
func (v *VolumeReader) ReadRecord(index uint64) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	buffer := make([]byte, v.recordSize)
	sectorsPerCluster := v.clusterSize / v.sectorSize
	sectorOffset := int64(index) * v.recordSize / v.sectorSize
	sectorNumber := v.recordSize / v.sectorSize
	for sector := int64(0); sector < sectorNumber; sector++ {
		cluster := (sectorOffset + sector) / sectorsPerCluster
		run, into, ok := locate(v.runs, cluster)
		if !ok {
			return nil, errors.Wrapf(ErrOutsideRuns, "record %d", index)
		}
		if run.Sparse {
			return nil, errors.Errorf("record %d sits in a sparse run", index)
		}
		offset := (run.Offset+into)*v.clusterSize + ((sectorOffset+sector)*v.sectorSize)%v.clusterSize
		if err := v.readAtLocked(offset, buffer[sector*v.sectorSize:(sector+1)*v.sectorSize]); err != nil {
			return nil, errors.Wrapf(err, "record %d sector %d", index, sector)
		}
	}
	return buffer, nil
}

//ReadNonResident reads the content described by a raw run list, truncated to size
func (v *VolumeReader) ReadNonResident(runList []byte, size uint64) ([]byte, error) {
	runs, err := DecodeRunList(runList)
	if err != nil {
		return nil, err
	}
	if size > maxNonResident {
		return nil, errors.Errorf("non resident content of %d bytes is too large", size)
	}
	//count in clusters so corrupt lengths cannot overflow
	maxClusters := maxNonResident/v.clusterSize + 1
	need := (int64(size) + v.clusterSize - 1) / v.clusterSize
	have := int64(0)
	for _, r := range runs {
		if r.Length <= 0 || r.Length > maxClusters {
			return nil, errors.Wrapf(ErrBadRun, "run of %d clusters", r.Length)
		}
		have += r.Length
	}
	if have < need {
		return nil, errors.Wrapf(ErrShortRunList, "%d clusters for %d bytes", have, size)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]byte, 0, size)
	for _, r := range runs {
		left := int64(size) - int64(len(out))
		if left <= 0 {
			break
		}
		want := r.Length * v.clusterSize
		if want > left {
			want = left
		}
		buf := make([]byte, want)
		if !r.Sparse {
			if r.Offset < 0 {
				return nil, errors.Wrapf(ErrBadRun, "run at cluster %d", r.Offset)
			}
			if err := v.readAtLocked(r.Offset*v.clusterSize, buf); err != nil {
				return nil, err
			}
		}
		out = append(out, buf...)
	}
	return out, nil
}

//LoadMFTRuns replaces the bootstrap run with the run list of the $MFT's own unnamed $DATA
//attribute, which may be spread over several records.
func (v *VolumeReader) LoadMFTRuns() error {
	res, err := mft.NewResolver(v, mft.WithNonResidentReader(v))
	if err != nil {
		return err
	}
	set, err := res.Resolve(0)
	if err != nil {
		return errors.Wrap(err, "resolving $MFT")
	}

	extents := []mft.Attribute{}
	for _, a := range set.Get(mft.AttrData) {
		if a.Header.Name == "" && a.Header.NonResident {
			extents = append(extents, a)
		}
	}
	if len(extents) == 0 {
		return errors.New("$MFT has no non resident $DATA")
	}
	sort.SliceStable(extents, func(i, j int) bool {
		return extents[i].Header.StartVCN < extents[j].Header.StartVCN
	})

	runs := []Run{}
	for _, e := range extents {
		r, err := DecodeRunList(e.Runs)
		if err != nil {
			return errors.Wrapf(err, "$MFT $DATA at vcn %d", e.Header.StartVCN)
		}
		runs = append(runs, r...)
	}
	v.log.Debugf("$MFT spans %d runs, %d clusters", len(runs), Clusters(runs))
	v.SetRuns(runs)
	return nil
}

//Count is the number of records in the $MFT, from the real size of its $DATA
func (v *VolumeReader) Count() (uint64, error) {
	res, err := mft.NewResolver(v)
	if err != nil {
		return 0, err
	}
	set, err := res.Resolve(0)
	if err != nil {
		return 0, errors.Wrap(err, "resolving $MFT")
	}
	return RecordCount(set, uint64(v.recordSize)), nil
}

func (v *VolumeReader) Close() error {
	if v.closer == nil {
		return nil
	}
	return v.closer.Close()
}

//RecordCount works out how many records the table holds from the entry of record 0
func RecordCount(mftEntry *mft.EntryAttributeSet, recordSize uint64) uint64 {
	if recordSize == 0 {
		return 0
	}
	return mftEntry.DataSize() / recordSize
}

func (v *VolumeReader) readAt(offset int64, buf []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.readAtLocked(offset, buf)
}

func (v *VolumeReader) readAtLocked(offset int64, buf []byte) error {
	if _, err := v.handle.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "seek to %d", offset)
	}
	if _, err := io.ReadFull(v.handle, buf); err != nil {
		return errors.Wrapf(err, "read %d bytes at %d", len(buf), offset)
	}
	return nil
}
