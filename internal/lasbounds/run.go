package lasbounds

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/las-bounds/internal/config"
	"github.com/banshee-data/las-bounds/internal/fsutil"
	"github.com/banshee-data/las-bounds/internal/preview"
	"github.com/banshee-data/las-bounds/internal/shapefile"
	"github.com/banshee-data/las-bounds/internal/srs"
)

// LayerName is the name of the polygon layer in every output dataset.
const LayerName = "bounds"

// attrWidth is the declared width of every string attribute.
const attrWidth = shapefile.MaxFieldWidth

// Options configures one run.
type Options struct {
	Dir         string
	EPSG        int    // 0 means no declared spatial reference
	Mode        string // config.ModeDirectory (default) or config.ModePerFile
	Output      string // directory mode only; derived from Dir when empty
	Ext         string
	NameValue   string // per-file mode "Name" attribute
	WriteText   bool
	PreviewPNG  string
	PreviewHTML string

	Stdout io.Writer
	FS     fsutil.FileSystem
	Driver shapefile.Driver
}

// OptionsFromConfig builds Options for dir from a run configuration.
func OptionsFromConfig(dir string, cfg *config.RunConfig) Options {
	return Options{
		Dir:         dir,
		EPSG:        cfg.GetEPSG(),
		Mode:        cfg.GetMode(),
		Output:      cfg.GetOutput(),
		Ext:         cfg.GetExtension(),
		NameValue:   cfg.GetNameValue(),
		WriteText:   cfg.GetWriteText(),
		PreviewPNG:  cfg.GetPreviewPNG(),
		PreviewHTML: cfg.GetPreviewHTML(),
	}
}

// Summary reports what a run produced.
type Summary struct {
	Files   int
	Outputs []string
	Dumps   []string
}

// Run scans opts.Dir, reads every matching header and writes the footprints.
// The first failure aborts the run; artifacts already written stay on disk.
func Run(opts Options) (Summary, error) {
	opts = opts.withDefaults()
	if opts.Dir == "" {
		return Summary{}, validationErr("config", "", errors.New("no directory given"))
	}
	if opts.Mode != config.ModeDirectory && opts.Mode != config.ModePerFile {
		return Summary{}, validationErr("config", "", fmt.Errorf("unknown mode %q", opts.Mode))
	}

	var ref *srs.SpatialRef
	if opts.EPSG != 0 {
		r, err := srs.Resolve(opts.EPSG)
		if err != nil {
			return Summary{}, driverErr("srs", "", err)
		}
		ref = &r
		Diagf("using spatial reference %s", r)
	}

	r := &runner{opts: opts, ref: ref}
	var err error
	if opts.Mode == config.ModePerFile {
		err = r.perFile()
	} else {
		err = r.directory()
	}
	if err != nil {
		return r.summary, err
	}

	if err := r.previews(); err != nil {
		return r.summary, err
	}
	Opsf("processed %d file(s), wrote %d dataset(s)", r.summary.Files, len(r.summary.Outputs))
	return r.summary, nil
}

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = config.ModeDirectory
	}
	if o.Ext == "" {
		o.Ext = DefaultExt
	}
	if o.Stdout == nil {
		o.Stdout = io.Discard
	}
	if o.FS == nil {
		o.FS = fsutil.OSFileSystem{}
	}
	if o.Driver == nil {
		o.Driver = shapefile.ESRI{}
	}
	return o
}

type runner struct {
	opts       Options
	ref        *srs.SpatialRef
	summary    Summary
	footprints []preview.Footprint
}

// directory writes one dataset for the whole directory, one feature per file.
func (r *runner) directory() (err error) {
	out := r.opts.Output
	if out == "" {
		if out, err = DirectoryOutput(r.opts.Dir); err != nil {
			return err
		}
	}

	paths, err := ListLAS(r.opts.FS, r.opts.Dir, r.opts.Ext)
	if err != nil {
		return err
	}

	ds, err := r.opts.Driver.Create(out, shapefile.LayerSpec{
		Name:   LayerName,
		Fields: []shapefile.Field{{Name: "name", Width: attrWidth}, {Name: "path", Width: attrWidth}},
		SRS:    r.ref,
	})
	if err != nil {
		return driverErr("write", out, err)
	}
	r.summary.Outputs = append(r.summary.Outputs, out)
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = driverErr("write", out, cerr)
		}
	}()

	for i, p := range paths {
		fmt.Fprintf(r.opts.Stdout, "[%d/%d] %s\n", i+1, len(paths), p)

		b, err := r.read(p)
		if err != nil {
			return err
		}
		name, err := FileName(p)
		if err != nil {
			return err
		}
		if len(p) > attrWidth {
			Diagf("path of %s truncated to %d bytes in attribute table", name, attrWidth)
		}
		if err := ds.AddFeature(Ring(b.Footprint()), name, p); err != nil {
			return driverErr("write", out, fmt.Errorf("feature for %s: %w", p, err))
		}
		r.summary.Files++
	}
	return nil
}

// perFile writes one single-feature dataset next to every input.
func (r *runner) perFile() error {
	fmt.Fprintf(r.opts.Stdout, "Searching in: %s\n", r.opts.Dir)

	paths, err := ListLAS(r.opts.FS, r.opts.Dir, r.opts.Ext)
	if err != nil {
		return err
	}

	for _, p := range paths {
		b, err := r.read(p)
		if err != nil {
			return err
		}
		out := SwapExt(p, ".shp")
		if err := r.writeSingle(out, b); err != nil {
			return err
		}
		r.summary.Files++
		Diagf("wrote %s", out)
	}
	return nil
}

func (r *runner) writeSingle(out string, b FileBounds) (err error) {
	ds, err := r.opts.Driver.Create(out, shapefile.LayerSpec{
		Name:   LayerName,
		Fields: []shapefile.Field{{Name: "Name", Width: attrWidth}},
		SRS:    r.ref,
	})
	if err != nil {
		return driverErr("write", out, err)
	}
	r.summary.Outputs = append(r.summary.Outputs, out)
	defer func() {
		if cerr := ds.Close(); cerr != nil && err == nil {
			err = driverErr("write", out, cerr)
		}
	}()

	if err := ds.AddFeature(Ring(b.Footprint()), r.opts.NameValue); err != nil {
		return driverErr("write", out, err)
	}
	return nil
}

// read extracts the bounds of p and writes its text dump when enabled.
func (r *runner) read(p string) (FileBounds, error) {
	b, err := ReadBounds(r.opts.FS, p)
	if err != nil {
		return FileBounds{}, err
	}
	Diagf("%s: LAS %s from %q/%q, %d points, min=%v max=%v", p, b.Header.Version(),
		b.Header.SystemIdentifier, b.Header.GeneratingSoftware, b.Header.PointCount, b.Box.Min, b.Box.Max)

	if r.opts.WriteText {
		txt := SwapExt(p, ".txt")
		if err := r.opts.FS.WriteFile(txt, []byte(b.Dump()), 0644); err != nil {
			return FileBounds{}, ioErr("dump", txt, err)
		}
		r.summary.Dumps = append(r.summary.Dumps, txt)
	}

	r.footprints = append(r.footprints, preview.Footprint{Label: p, Box: b.Footprint()})
	return b, nil
}

func (r *runner) previews() error {
	if r.opts.PreviewPNG == "" && r.opts.PreviewHTML == "" {
		return nil
	}
	if len(r.footprints) == 0 {
		Opsf("no footprints, skipping previews")
		return nil
	}
	title := filepath.Base(filepath.Clean(r.opts.Dir))

	if p := r.opts.PreviewPNG; p != "" {
		format := strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
		if format == "" {
			format = "png"
		}
		err := r.writePreview(p, func(w io.Writer) error {
			return preview.WriteImage(w, format, title, r.footprints)
		})
		if err != nil {
			return err
		}
	}

	if p := r.opts.PreviewHTML; p != "" {
		err := r.writePreview(p, func(w io.Writer) error {
			return preview.WriteHTML(w, title, r.footprints)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) writePreview(p string, render func(io.Writer) error) error {
	w, err := r.opts.FS.Create(p)
	if err != nil {
		return ioErr("preview", p, err)
	}
	if err := render(w); err != nil {
		w.Close()
		return ioErr("preview", p, err)
	}
	if err := w.Close(); err != nil {
		return ioErr("preview", p, err)
	}
	return nil
}

// FileName returns the base name of p, failing when p has none.
func FileName(p string) (string, error) {
	base := filepath.Base(p)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", validationErr("write", p, errors.New("path has no file name"))
	}
	return base, nil
}

// SwapExt replaces the extension of p with ext (which includes the dot).
func SwapExt(p, ext string) string {
	return strings.TrimSuffix(p, filepath.Ext(p)) + ext
}

// DirectoryOutput derives the aggregate shapefile path for dir: the
// directory itself with a .shp extension, e.g. /data/tiles -> /data/tiles.shp.
func DirectoryOutput(dir string) (string, error) {
	clean := filepath.Clean(dir)
	if base := filepath.Base(clean); base == "." || base == ".." {
		abs, err := filepath.Abs(clean)
		if err != nil {
			return "", validationErr("write", dir, err)
		}
		clean = abs
	}
	if _, err := FileName(clean); err != nil {
		return "", validationErr("write", dir, errors.New("directory has no name to derive the output from"))
	}
	return clean + ".shp", nil
}
