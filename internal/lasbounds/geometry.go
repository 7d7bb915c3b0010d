package lasbounds

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Footprint returns the X/Y extent of the file bounds. Z is dropped.
func (b FileBounds) Footprint() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: b.Box.Min.X, Y: b.Box.Min.Y},
		Max: r2.Vec{X: b.Box.Max.X, Y: b.Box.Max.Y},
	}
}

// Ring converts a footprint into a closed five-vertex ring:
// (minX,minY) (maxX,minY) (maxX,maxY) (minX,maxY) (minX,minY).
func Ring(box r2.Box) []r2.Vec {
	return []r2.Vec{
		{X: box.Min.X, Y: box.Min.Y},
		{X: box.Max.X, Y: box.Min.Y},
		{X: box.Max.X, Y: box.Max.Y},
		{X: box.Min.X, Y: box.Max.Y},
		{X: box.Min.X, Y: box.Min.Y},
	}
}

// Dump renders the bounds as the plain-text side file written next to an
// input when text dumps are enabled.
func (b FileBounds) Dump() string {
	return fmt.Sprintf("file: %s\nversion: %s\nsystem: %s\nsoftware: %s\npoints: %d\nmin: %.6f %.6f %.6f\nmax: %.6f %.6f %.6f\n",
		b.SourcePath, b.Header.Version(), b.Header.SystemIdentifier, b.Header.GeneratingSoftware, b.Header.PointCount,
		b.Box.Min.X, b.Box.Min.Y, b.Box.Min.Z,
		b.Box.Max.X, b.Box.Max.Y, b.Box.Max.Z)
}
