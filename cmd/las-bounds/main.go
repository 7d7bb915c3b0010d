// Command las-bounds writes the X/Y bounding boxes of the LAS files in a
// directory as ESRI Shapefile polygons.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/las-bounds/internal/config"
	"github.com/banshee-data/las-bounds/internal/fsutil"
	"github.com/banshee-data/las-bounds/internal/lasbounds"
	"github.com/banshee-data/las-bounds/internal/srs"
	"github.com/banshee-data/las-bounds/internal/version"
)

const (
	exitOK    = 0
	exitRun   = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("las-bounds", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		epsg        int
		mode        = fs.String("mode", config.ModeDirectory, "output mode: directory or per-file")
		output      = fs.String("o", "", "output shapefile (directory mode; default DIRECTORY.shp)")
		ext         = fs.String("ext", lasbounds.DefaultExt, "point-cloud file extension")
		nameValue   = fs.String("name", "BBOX", "Name attribute value in per-file mode")
		writeText   = fs.Bool("txt", false, "write a .txt bounds dump next to each input")
		previewPNG  = fs.String("preview-png", "", "write a PNG overview of all footprints")
		previewHTML = fs.String("preview-html", "", "write an HTML overview of all footprints")
		configPath  = fs.String("config", "", "JSON run configuration file")
		listEPSG    = fs.Bool("list-epsg", false, "print the built-in EPSG codes and exit")
		verbose     = fs.Bool("v", false, "verbose diagnostics on stderr")
		showVersion = fs.Bool("version", false, "print version and exit")
	)
	fs.IntVar(&epsg, "e", 0, "EPSG code of LAS coordinate system")
	fs.IntVar(&epsg, "epsg", 0, "EPSG code of LAS coordinate system (same as -e)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: las-bounds [flags] DIRECTORY\n\nFlags:\n")
		fs.PrintDefaults()
	}

	// flag stops at the first positional; keep parsing after each one so
	// "DIRECTORY -e 2180" works as well as "-e 2180 DIRECTORY".
	var positional []string
	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return exitOK
			}
			return exitUsage
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		rest = fs.Args()[1:]
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String("las-bounds"))
		return exitOK
	}
	if *listEPSG {
		for _, code := range srs.Codes() {
			ref, _ := srs.Resolve(code)
			fmt.Fprintln(stdout, ref)
		}
		return exitOK
	}

	if len(positional) != 1 {
		fmt.Fprintln(stderr, "las-bounds: exactly one DIRECTORY argument is required")
		fs.Usage()
		return exitUsage
	}

	logs := lasbounds.LogWriters{Ops: stderr}
	if *verbose {
		logs.Diag = stderr
		logs.Trace = stderr
	}
	lasbounds.SetLogWriters(logs)

	cfg := config.EmptyRunConfig()
	if *configPath != "" {
		loaded, err := config.LoadRunConfig(fsutil.OSFileSystem{}, *configPath)
		if err != nil {
			fmt.Fprintf(stderr, "las-bounds: %v\n", configError(*configPath, err))
			return exitUsage
		}
		cfg = loaded
	}

	// Flags given on the command line win over the config file.
	set := &config.RunConfig{}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "e", "epsg":
			set.EPSG = &epsg
		case "mode":
			set.Mode = mode
		case "o":
			set.Output = output
		case "ext":
			set.Extension = ext
		case "name":
			set.NameValue = nameValue
		case "txt":
			set.WriteText = writeText
		case "preview-png":
			set.PreviewPNG = previewPNG
		case "preview-html":
			set.PreviewHTML = previewHTML
		}
	})
	cfg.Override(set)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "las-bounds: %v\n", configError(*configPath, err))
		return exitUsage
	}

	opts := lasbounds.OptionsFromConfig(positional[0], cfg)
	opts.Stdout = stdout

	sum, err := lasbounds.Run(opts)
	if err != nil {
		fmt.Fprintf(stderr, "las-bounds: %v\n", err)
		return exitRun
	}
	if *verbose {
		for _, out := range sum.Outputs {
			fmt.Fprintf(stderr, "wrote %s\n", out)
		}
	}
	return exitOK
}

func configError(path string, err error) error {
	return &lasbounds.Error{Kind: lasbounds.KindValidation, Op: "config", Path: path, Err: err}
}
