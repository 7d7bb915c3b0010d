package lasbounds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRing(t *testing.T) {
	boxes := []r2.Box{
		{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 10, Y: 10}},
		{Min: r2.Vec{X: -120.5, Y: 35.25}, Max: r2.Vec{X: -120.25, Y: 35.5}},
		{Min: r2.Vec{X: 500000, Y: 5700000}, Max: r2.Vec{X: 501000, Y: 5700500}},
		{Min: r2.Vec{X: 3, Y: 4}, Max: r2.Vec{X: 3, Y: 4}},
	}
	for _, box := range boxes {
		ring := Ring(box)
		require.Len(t, ring, 5)
		assert.Equal(t, ring[0], ring[4], "ring must be closed")
		assert.Equal(t, box.Min, ring[0])
		assert.Equal(t, r2.Vec{X: box.Max.X, Y: box.Min.Y}, ring[1])
		assert.Equal(t, box.Max, ring[2])
		assert.Equal(t, r2.Vec{X: box.Min.X, Y: box.Max.Y}, ring[3])

		xs := map[float64]bool{}
		ys := map[float64]bool{}
		for _, v := range ring {
			xs[v.X] = true
			ys[v.Y] = true
		}
		assert.Equal(t, map[float64]bool{box.Min.X: true, box.Max.X: true}, xs)
		assert.Equal(t, map[float64]bool{box.Min.Y: true, box.Max.Y: true}, ys)
	}
}

func TestFootprintDropsZ(t *testing.T) {
	b := FileBounds{Box: r3.Box{
		Min: r3.Vec{X: 1, Y: 2, Z: -50},
		Max: r3.Vec{X: 3, Y: 4, Z: 900},
	}}
	assert.Equal(t, r2.Box{Min: r2.Vec{X: 1, Y: 2}, Max: r2.Vec{X: 3, Y: 4}}, b.Footprint())
}

func TestDump(t *testing.T) {
	b := FileBounds{
		SourcePath: "/data/a.las",
		Box: r3.Box{
			Min: r3.Vec{X: 0, Y: 0, Z: 0},
			Max: r3.Vec{X: 10, Y: 10.5, Z: 5},
		},
		Header: Header{
			VersionMajor:       1,
			VersionMinor:       4,
			SystemIdentifier:   "LIDAR SCANNER",
			GeneratingSoftware: "lastools",
			PointCount:         7,
		},
	}
	want := "file: /data/a.las\n" +
		"version: 1.4\n" +
		"system: LIDAR SCANNER\n" +
		"software: lastools\n" +
		"points: 7\n" +
		"min: 0.000000 0.000000 0.000000\n" +
		"max: 10.000000 10.500000 5.000000\n"
	assert.Equal(t, want, b.Dump())
}
