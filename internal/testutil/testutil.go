// Package testutil builds LAS fixtures for tests.
//
// The encoder here is written against the published header layout rather
// than the decoder's structs, so the two check each other.
package testutil

import (
	"encoding/binary"
	"math"
	"os"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

// Header byte offsets shared by every LAS version.
const (
	offVersionMajor = 24
	offVersionMinor = 25
	offSystemID     = 26
	offSoftware     = 58
	offHeaderSize   = 94
	offPointOffset  = 96
	offPointFormat  = 104
	offRecordLength = 105
	offLegacyCount  = 107
	offScale        = 131
	offBounds       = 179
	offPointCount14 = 247
)

// HeaderSize returns the public header block size for a LAS 1.x minor version.
func HeaderSize(minor uint8) int {
	switch {
	case minor >= 4:
		return 375
	case minor == 3:
		return 235
	default:
		return 227
	}
}

// LASHeader encodes a public header block declaring the given bounds and
// point count. Counts that do not fit the legacy 32-bit field are only
// recorded in the 1.4 extended field.
func LASHeader(minor uint8, min, max r3.Vec, points uint64) []byte {
	size := HeaderSize(minor)
	b := make([]byte, size)
	le := binary.LittleEndian

	copy(b, "LASF")
	b[offVersionMajor] = 1
	b[offVersionMinor] = minor
	copy(b[offSystemID:offSystemID+32], "testutil")
	copy(b[offSoftware:offSoftware+32], "testutil fixture")
	le.PutUint16(b[offHeaderSize:], uint16(size))
	le.PutUint32(b[offPointOffset:], uint32(size))
	b[offPointFormat] = 0
	le.PutUint16(b[offRecordLength:], 20)
	if points <= math.MaxUint32 {
		le.PutUint32(b[offLegacyCount:], uint32(points))
	}
	for i := 0; i < 3; i++ {
		le.PutUint64(b[offScale+8*i:], math.Float64bits(0.001))
	}
	for i, v := range []float64{max.X, min.X, max.Y, min.Y, max.Z, min.Z} {
		le.PutUint64(b[offBounds+8*i:], math.Float64bits(v))
	}
	if minor >= 4 {
		le.PutUint64(b[offPointCount14:], points)
	}
	return b
}

// WriteLAS writes a LAS 1.2 file with the given bounds to path.
func WriteLAS(t testing.TB, path string, min, max r3.Vec) {
	t.Helper()
	if err := os.WriteFile(path, LASHeader(2, min, max, 1), 0644); err != nil {
		t.Fatalf("write LAS fixture %s: %v", path, err)
	}
}
