package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/banshee-data/las-bounds/internal/fsutil"
)

// Output modes.
const (
	// ModeDirectory writes one shapefile for the whole scanned directory.
	ModeDirectory = "directory"
	// ModePerFile writes one shapefile next to every input file.
	ModePerFile = "per-file"
)

// maxFileSize caps the size of a run configuration file.
const maxFileSize = 1 * 1024 * 1024

// RunConfig is the optional JSON run configuration. Every field is a pointer
// so that omitted keys fall back to the Get* defaults and explicitly set
// command-line flags can override individual values.
type RunConfig struct {
	Mode        *string `json:"mode,omitempty"` // "directory" or "per-file"
	EPSG        *int    `json:"epsg,omitempty"`
	Output      *string `json:"output,omitempty"`
	Extension   *string `json:"extension,omitempty"`
	NameValue   *string `json:"name_value,omitempty"` // per-file mode "Name" attribute
	WriteText   *bool   `json:"write_text,omitempty"`
	PreviewPNG  *string `json:"preview_png,omitempty"`
	PreviewHTML *string `json:"preview_html,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }
func ptrBool(v bool) *bool       { return &v }

// EmptyRunConfig returns a RunConfig with all fields set to nil.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// LoadRunConfig loads a RunConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the file keep their defaults.
func LoadRunConfig(fsys fsutil.FileSystem, path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.Mode != nil && *c.Mode != ModeDirectory && *c.Mode != ModePerFile {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDirectory, ModePerFile, *c.Mode)
	}

	if c.EPSG != nil && *c.EPSG < 0 {
		return fmt.Errorf("epsg must be non-negative, got %d", *c.EPSG)
	}

	if c.Extension != nil {
		ext := strings.TrimPrefix(*c.Extension, ".")
		if ext == "" || strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("invalid extension %q", *c.Extension)
		}
	}

	if c.Output != nil && *c.Output != "" && filepath.Ext(*c.Output) != ".shp" {
		return fmt.Errorf("output must end in .shp, got %q", *c.Output)
	}

	if c.NameValue != nil && len(*c.NameValue) > 254 {
		return fmt.Errorf("name_value longer than 254 bytes")
	}

	return nil
}

// GetMode returns the output mode or the default (directory).
func (c *RunConfig) GetMode() string {
	if c.Mode == nil || *c.Mode == "" {
		return ModeDirectory
	}
	return *c.Mode
}

// GetEPSG returns the EPSG code, or 0 when no spatial reference is declared.
func (c *RunConfig) GetEPSG() int {
	if c.EPSG == nil {
		return 0
	}
	return *c.EPSG
}

// GetOutput returns the explicit output path, or "" to derive it from the
// scanned directory.
func (c *RunConfig) GetOutput() string {
	if c.Output == nil {
		return ""
	}
	return *c.Output
}

// GetExtension returns the point-cloud extension without the dot.
func (c *RunConfig) GetExtension() string {
	if c.Extension == nil || *c.Extension == "" {
		return "las"
	}
	return strings.TrimPrefix(*c.Extension, ".")
}

// GetNameValue returns the per-file "Name" attribute value or the default.
func (c *RunConfig) GetNameValue() string {
	if c.NameValue == nil {
		return "BBOX"
	}
	return *c.NameValue
}

// GetWriteText returns whether .txt bounds dumps are written.
func (c *RunConfig) GetWriteText() bool {
	if c.WriteText == nil {
		return false
	}
	return *c.WriteText
}

// GetPreviewPNG returns the PNG overview path, or "" when disabled.
func (c *RunConfig) GetPreviewPNG() string {
	if c.PreviewPNG == nil {
		return ""
	}
	return *c.PreviewPNG
}

// GetPreviewHTML returns the HTML overview path, or "" when disabled.
func (c *RunConfig) GetPreviewHTML() string {
	if c.PreviewHTML == nil {
		return ""
	}
	return *c.PreviewHTML
}

// Override copies every non-nil field of o over c.
func (c *RunConfig) Override(o *RunConfig) {
	if o == nil {
		return
	}
	if o.Mode != nil {
		c.Mode = ptrString(*o.Mode)
	}
	if o.EPSG != nil {
		c.EPSG = ptrInt(*o.EPSG)
	}
	if o.Output != nil {
		c.Output = ptrString(*o.Output)
	}
	if o.Extension != nil {
		c.Extension = ptrString(*o.Extension)
	}
	if o.NameValue != nil {
		c.NameValue = ptrString(*o.NameValue)
	}
	if o.WriteText != nil {
		c.WriteText = ptrBool(*o.WriteText)
	}
	if o.PreviewPNG != nil {
		c.PreviewPNG = ptrString(*o.PreviewPNG)
	}
	if o.PreviewHTML != nil {
		c.PreviewHTML = ptrString(*o.PreviewHTML)
	}
}
