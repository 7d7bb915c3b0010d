// Package shapefile writes polygon layers in the ESRI Shapefile format
// (.shp/.shx/.dbf plus an optional .prj) on top of go-shp.
package shapefile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	shp "github.com/jonas-p/go-shp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/las-bounds/internal/srs"
)

// MaxFieldWidth is the widest character field dBASE III allows.
const MaxFieldWidth = 254

// maxFieldName is the dBASE limit on field name length.
const maxFieldName = 10

var (
	// ErrSchema is returned for field declarations the format cannot hold.
	ErrSchema = errors.New("invalid layer schema")
	// ErrGeometry is returned for rings that are not closed polygons.
	ErrGeometry = errors.New("invalid polygon ring")
	// ErrClosed is returned when writing to a closed dataset.
	ErrClosed = errors.New("dataset closed")
)

// Field declares one string attribute column.
type Field struct {
	Name  string
	Width int
}

// LayerSpec describes the single polygon layer of a dataset.
type LayerSpec struct {
	// Name is kept for diagnostics; a shapefile's layer name is its file name.
	Name   string
	Fields []Field
	SRS    *srs.SpatialRef
}

func (s LayerSpec) validate() error {
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" || len(f.Name) > maxFieldName {
			return fmt.Errorf("%w: field name %q must be 1-%d bytes", ErrSchema, f.Name, maxFieldName)
		}
		key := strings.ToUpper(f.Name)
		if seen[key] {
			return fmt.Errorf("%w: duplicate field %q", ErrSchema, f.Name)
		}
		seen[key] = true
		if f.Width < 1 || f.Width > MaxFieldWidth {
			return fmt.Errorf("%w: field %q width %d outside 1-%d", ErrSchema, f.Name, f.Width, MaxFieldWidth)
		}
	}
	return nil
}

// Dataset is an open output layer accepting polygon features.
type Dataset interface {
	// AddFeature appends one polygon with one value per declared field.
	AddFeature(ring []r2.Vec, values ...string) error
	// Path is the .shp path of the dataset.
	Path() string
	// Close flushes headers and releases the files. It is safe to call twice.
	Close() error
}

// Driver creates datasets.
type Driver interface {
	Create(path string, spec LayerSpec) (Dataset, error)
}

// ESRI is the shapefile driver. Every file of a dataset (.shp, .shx, .dbf
// and .prj) is written to the operating system filesystem, since go-shp
// only writes through os.
type ESRI struct{}

// Create creates (or truncates) the shapefile at path and declares the
// schema. The .prj is written when spec carries a spatial reference and
// removed otherwise, so a rerun never inherits a stale one.
func (ESRI) Create(path string, spec LayerSpec) (Dataset, error) {
	if filepath.Ext(path) != ".shp" {
		return nil, fmt.Errorf("shapefile path %q must end in .shp", path)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(path, ".shp")

	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	fields := make([]shp.Field, len(spec.Fields))
	for i, f := range spec.Fields {
		fields[i] = shp.StringField(f.Name, uint8(f.Width))
	}
	if err := w.SetFields(fields); err != nil {
		w.Close()
		return nil, fmt.Errorf("create attribute table for %s: %w", path, err)
	}

	prj := base + ".prj"
	if spec.SRS != nil {
		if err := os.WriteFile(prj, []byte(spec.SRS.WKT), 0644); err != nil {
			w.Close()
			return nil, fmt.Errorf("write %s: %w", prj, err)
		}
	} else if err := os.Remove(prj); err != nil && !errors.Is(err, fs.ErrNotExist) {
		w.Close()
		return nil, fmt.Errorf("remove stale %s: %w", prj, err)
	}

	return &dataset{path: path, base: base, spec: spec, w: w}, nil
}

type dataset struct {
	path   string
	base   string
	spec   LayerSpec
	w      *shp.Writer
	closed bool
}

func (d *dataset) Path() string { return d.path }

func (d *dataset) AddFeature(ring []r2.Vec, values ...string) error {
	if d.closed {
		return ErrClosed
	}
	if len(values) != len(d.spec.Fields) {
		return fmt.Errorf("%w: got %d values for %d fields", ErrSchema, len(values), len(d.spec.Fields))
	}
	poly, err := polygon(ring)
	if err != nil {
		return err
	}

	row := int(d.w.Write(poly))
	for i, v := range values {
		if err := d.w.WriteAttribute(row, i, fitField(v, d.spec.Fields[i].Width)); err != nil {
			return fmt.Errorf("write attribute %s of feature %d: %w", d.spec.Fields[i].Name, row, err)
		}
	}
	return nil
}

// Close flushes the headers. go-shp v0.1.1 names the attribute table
// "<base>dbf"; it is moved to "<base>.dbf" here.
func (d *dataset) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.w.Close()

	misplaced := d.base + "dbf"
	if _, err := os.Stat(misplaced); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", misplaced, err)
	}
	if err := os.Rename(misplaced, d.base+".dbf"); err != nil {
		return fmt.Errorf("move attribute table to %s.dbf: %w", d.base, err)
	}
	return nil
}

// fitField truncates v to width bytes without splitting a UTF-8 sequence,
// then space pads it; dBASE character fields are fixed width.
func fitField(v string, width int) string {
	if len(v) > width {
		cut := width
		for cut > 0 && !utf8.RuneStart(v[cut]) {
			cut--
		}
		v = v[:cut]
	}
	return v + strings.Repeat(" ", width-len(v))
}

// polygon builds a single-part shapefile polygon from a closed ring.
func polygon(ring []r2.Vec) (*shp.Polygon, error) {
	if len(ring) < 4 {
		return nil, fmt.Errorf("%w: %d vertices, need at least 4", ErrGeometry, len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		return nil, fmt.Errorf("%w: first and last vertex differ", ErrGeometry)
	}

	points := make([]shp.Point, len(ring))
	box := shp.Box{MinX: ring[0].X, MinY: ring[0].Y, MaxX: ring[0].X, MaxY: ring[0].Y}
	for i, v := range ring {
		points[i] = shp.Point{X: v.X, Y: v.Y}
		box.MinX = min(box.MinX, v.X)
		box.MinY = min(box.MinY, v.Y)
		box.MaxX = max(box.MaxX, v.X)
		box.MaxY = max(box.MaxY, v.Y)
	}

	return &shp.Polygon{
		Box:       box,
		NumParts:  1,
		NumPoints: int32(len(points)),
		Parts:     []int32{0},
		Points:    points,
	}, nil
}
