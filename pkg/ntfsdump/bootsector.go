package ntfsdump

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

//BootSectorSize is the size of the NTFS boot sector read from the start of the volume
const BootSectorSize = 0x200

//record sizes outside this range are refused, whatever the boot sector says
const (
	MinRecordSize = 512
	MaxRecordSize = 64 << 10
)

var (
	ErrNotNTFS      = errors.New("volume is not NTFS")
	ErrBadGeometry  = errors.New("invalid volume geometry")
	ErrOutsideRuns  = errors.New("offset is not covered by any run")
	ErrShortRunList = errors.New("run list ends inside a run")
	ErrBadRun       = errors.New("invalid run")
)

//ValidRecordSize is true for a power of two between MinRecordSize and MaxRecordSize
func ValidRecordSize(n uint64) bool {
	return n >= MinRecordSize && n <= MaxRecordSize && n&(n-1) == 0
}

//BootSector is the on disk layout of the first sector of an NTFS volume
type BootSector struct {
	Jump             [3]byte
	OEMID            [8]byte
	BytePerSector    uint16
	SectorPerCluster uint8
	Reserved         [2]byte
	Zero1            [3]byte
	Unused1          [2]byte
	MediaDescriptor  byte
	Zeros2           [2]byte
	SectorPerTrack   uint16
	HeadNumber       uint16
	HiddenSector     uint32
	Unused2          [8]byte
	TotalSector      uint64
	MFTCluster       int64
	MFTMirrCluster   int64
	ClusterPerRecord int8
	Unused3          [3]byte
	ClusterPerBlock  int8
	Unused4          [3]byte
	SerialNumber     uint64
	CheckSum         uint32
	BootCode         [0x1aa]byte
	EndMarker        [2]byte
}

//ParseBootSector reads the boot sector and checks it describes a usable NTFS volume
func ParseBootSector(data []byte) (BootSector, error) {
	sec := BootSector{}
	if len(data) < BootSectorSize {
		return sec, errors.Wrapf(ErrNotNTFS, "boot sector needs %d bytes, have %d", BootSectorSize, len(data))
	}
	if err := binary.Read(bytes.NewReader(data[:BootSectorSize]), binary.LittleEndian, &sec); err != nil {
		return sec, errors.Wrap(err, "reading boot sector")
	}
	if !bytes.HasPrefix(sec.OEMID[:], []byte("NTFS")) {
		return sec, errors.Wrapf(ErrNotNTFS, "oem id %q", sec.OEMID[:])
	}
	if sec.BytePerSector == 0 || sec.BytePerSector%512 != 0 || sec.SectorPerCluster == 0 {
		return sec, errors.Wrapf(ErrBadGeometry, "%d bytes per sector, %d sectors per cluster", sec.BytePerSector, sec.SectorPerCluster)
	}
	if sec.ClusterPerRecord == 0 || sec.ClusterPerRecord < -31 {
		return sec, errors.Wrapf(ErrBadGeometry, "clusters per record %d", sec.ClusterPerRecord)
	}
	if !ValidRecordSize(sec.RecordSize()) {
		return sec, errors.Wrapf(ErrBadGeometry, "record size %d", sec.RecordSize())
	}
	return sec, nil
}

//ClusterSize in bytes
func (b BootSector) ClusterSize() uint64 {
	return uint64(b.BytePerSector) * uint64(b.SectorPerCluster)
}

//RecordSize in bytes. A negative clusters per record value is a power of two byte count.
func (b BootSector) RecordSize() uint64 {
	if b.ClusterPerRecord > 0 {
		return uint64(b.ClusterPerRecord) * b.ClusterSize()
	}
	return 1 << uint(-b.ClusterPerRecord)
}

func (b BootSector) TotalClusters() uint64 {
	return b.TotalSector / uint64(b.SectorPerCluster)
}

//MFTOffset is the byte offset of record 0
func (b BootSector) MFTOffset() int64 {
	return b.MFTCluster * int64(b.ClusterSize())
}

//Geometry is the flattened view of the boot sector used for reporting
type Geometry struct {
	OEMID          string `json:"oem_id"`
	BytesPerSector uint16 `json:"bytes_per_sector"`
	ClusterSize    uint64 `json:"cluster_size"`
	RecordSize     uint64 `json:"record_size"`
	TotalClusters  uint64 `json:"total_clusters"`
	MFTCluster     int64  `json:"mft_cluster"`
	MFTMirrCluster int64  `json:"mft_mirror_cluster"`
	SerialNumber   uint64 `json:"serial_number"`
}

func (b BootSector) Geometry() Geometry {
	return Geometry{
		OEMID:          string(bytes.TrimRight(b.OEMID[:], " \x00")),
		BytesPerSector: b.BytePerSector,
		ClusterSize:    b.ClusterSize(),
		RecordSize:     b.RecordSize(),
		TotalClusters:  b.TotalClusters(),
		MFTCluster:     b.MFTCluster,
		MFTMirrCluster: b.MFTMirrCluster,
		SerialNumber:   b.SerialNumber,
	}
}
