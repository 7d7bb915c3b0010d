package lasbounds

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/las-bounds/internal/fsutil"
)

// Public header block sizes per LAS minor version.
const (
	headerSizeV10 = 227
	headerSizeV13 = 235
	headerSizeV14 = 375
)

var lasSignature = [4]byte{'L', 'A', 'S', 'F'}

var (
	// ErrSignature means the file does not start with "LASF".
	ErrSignature = errors.New("not a LAS file: bad signature")
	// ErrVersion means the header declares a version this reader does not know.
	ErrVersion = errors.New("unsupported LAS version")
	// ErrHeaderSize means the declared header size or point offset is inconsistent.
	ErrHeaderSize = errors.New("inconsistent LAS header size")
)

// rawHeader is the LAS 1.0-1.2 public header block, little-endian and packed.
// Note the bounds are stored max-first per axis.
type rawHeader struct {
	Signature          [4]byte
	FileSourceID       uint16
	GlobalEncoding     uint16
	ProjectID          [16]byte
	VersionMajor       uint8
	VersionMinor       uint8
	SystemIdentifier   [32]byte
	GeneratingSoftware [32]byte
	CreationDay        uint16
	CreationYear       uint16
	HeaderSize         uint16
	OffsetToPointData  uint32
	NumberOfVLRs       uint32
	PointFormat        uint8
	PointRecordLength  uint16
	LegacyPointCount   uint32
	LegacyByReturn     [5]uint32
	Scale              [3]float64
	Offset             [3]float64
	MaxX, MinX         float64
	MaxY, MinY         float64
	MaxZ, MinZ         float64
}

// rawHeader14 is the tail added by LAS 1.3 (waveform) and 1.4 (extended counts).
type rawHeader14 struct {
	WaveformStart  uint64
	EVLRStart      uint64
	EVLRCount      uint32
	PointCount     uint64
	PointsByReturn [15]uint64
}

// Header is the subset of the LAS public header the tool reports.
type Header struct {
	VersionMajor       uint8
	VersionMinor       uint8
	SystemIdentifier   string
	GeneratingSoftware string
	HeaderSize         uint16
	PointFormat        uint8
	PointCount         uint64
	Min                r3.Vec
	Max                r3.Vec
}

// Version returns the header version as "major.minor".
func (h Header) Version() string {
	return fmt.Sprintf("%d.%d", h.VersionMajor, h.VersionMinor)
}

// ReadHeader decodes a LAS public header block from r. Only the header is
// consumed; point records are never read.
func ReadHeader(r io.Reader) (Header, error) {
	var raw rawHeader
	if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
		return Header{}, fmt.Errorf("read public header: %w", err)
	}
	if raw.Signature != lasSignature {
		return Header{}, ErrSignature
	}
	if raw.VersionMajor != 1 || raw.VersionMinor > 4 {
		return Header{}, fmt.Errorf("%w %d.%d", ErrVersion, raw.VersionMajor, raw.VersionMinor)
	}

	minSize := uint16(headerSizeV10)
	switch raw.VersionMinor {
	case 3:
		minSize = headerSizeV13
	case 4:
		minSize = headerSizeV14
	}
	if raw.HeaderSize < minSize {
		return Header{}, fmt.Errorf("%w: header size %d below %d for version 1.%d",
			ErrHeaderSize, raw.HeaderSize, minSize, raw.VersionMinor)
	}
	if raw.OffsetToPointData < uint32(raw.HeaderSize) {
		return Header{}, fmt.Errorf("%w: point data offset %d inside header of %d bytes",
			ErrHeaderSize, raw.OffsetToPointData, raw.HeaderSize)
	}

	h := Header{
		VersionMajor:       raw.VersionMajor,
		VersionMinor:       raw.VersionMinor,
		SystemIdentifier:   cString(raw.SystemIdentifier[:]),
		GeneratingSoftware: cString(raw.GeneratingSoftware[:]),
		HeaderSize:         raw.HeaderSize,
		PointFormat:        raw.PointFormat,
		PointCount:         uint64(raw.LegacyPointCount),
		Min:                r3.Vec{X: raw.MinX, Y: raw.MinY, Z: raw.MinZ},
		Max:                r3.Vec{X: raw.MaxX, Y: raw.MaxY, Z: raw.MaxZ},
	}

	if raw.VersionMinor >= 3 {
		var tail rawHeader14
		n := binary.Size(tail)
		if raw.VersionMinor == 3 {
			n = headerSizeV13 - headerSizeV10
		}
		buf := make([]byte, binary.Size(tail))
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return Header{}, fmt.Errorf("read 1.%d header extension: %w", raw.VersionMinor, err)
		}
		if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &tail); err != nil {
			return Header{}, fmt.Errorf("decode 1.%d header extension: %w", raw.VersionMinor, err)
		}
		if raw.VersionMinor == 4 && tail.PointCount > 0 {
			h.PointCount = tail.PointCount
		}
	}

	Tracef("header: version=%s format=%d points=%d size=%d min=%v max=%v",
		h.Version(), h.PointFormat, h.PointCount, h.HeaderSize, h.Min, h.Max)
	return h, nil
}

// FileBounds is the bounding box of one input file.
type FileBounds struct {
	SourcePath string
	Box        r3.Box
	Header     Header
}

// ReadBounds opens path and returns the bounds recorded in its header.
// Open failures are I/O errors; anything the header decoder rejects is a
// format error.
func ReadBounds(fsys fsutil.FileSystem, path string) (FileBounds, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return FileBounds{}, ioErr("read", path, err)
	}
	defer f.Close()

	h, err := ReadHeader(f)
	if err != nil {
		return FileBounds{}, formatErr("read", path, err)
	}

	return FileBounds{
		SourcePath: path,
		Box:        r3.Box{Min: h.Min, Max: h.Max},
		Header:     h,
	}, nil
}

// cString trims a fixed-width, NUL-padded header string.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimRight(b, " "))
}
