package preview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func sampleFootprints() []Footprint {
	return []Footprint{
		{Label: "/data/a.las", Box: r2.Box{Min: r2.Vec{X: 0, Y: 0}, Max: r2.Vec{X: 10, Y: 10}}},
		{Label: "/data/b.las", Box: r2.Box{Min: r2.Vec{X: 10, Y: 0}, Max: r2.Vec{X: 30, Y: 5}}},
	}
}

func TestFootprintGeometry(t *testing.T) {
	fp := sampleFootprints()[1]
	assert.Equal(t, 100.0, fp.Area())
	assert.Equal(t, r2.Vec{X: 20, Y: 2.5}, fp.Center())
}

func TestWriteImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteImage(&buf, "png", "tiles", sampleFootprints()))

	data := buf.Bytes()
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), data[:8])
}

func TestWriteImage_SVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteImage(&buf, "svg", "tiles", sampleFootprints()))
	assert.Contains(t, buf.String(), "<svg")
}

func TestWriteImage_ManyFootprints(t *testing.T) {
	var fps []Footprint
	for i := 0; i < legendLimit+5; i++ {
		x := float64(i)
		fps = append(fps, Footprint{Label: "tile", Box: r2.Box{Min: r2.Vec{X: x, Y: 0}, Max: r2.Vec{X: x + 1, Y: 1}}})
	}
	var buf bytes.Buffer
	require.NoError(t, WriteImage(&buf, "png", "many", fps))
	assert.NotZero(t, buf.Len())
}

func TestWriteImage_Errors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteImage(&buf, "png", "x", nil), ErrEmpty)
	assert.Error(t, WriteImage(&buf, "bmp", "x", sampleFootprints()))
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "tiles", sampleFootprints()))

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "footprints")
	assert.Contains(t, html, "a.las")
	assert.Contains(t, html, "b.las")
}

func TestWriteHTML_SingleFootprint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "one", sampleFootprints()[:1]))
	assert.NotEmpty(t, buf.String())
}

func TestWriteHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteHTML(&buf, "none", nil), ErrEmpty)
	assert.Zero(t, buf.Len())
}

func TestGenerateColors(t *testing.T) {
	assert.Nil(t, generateColors(0))
	colors := generateColors(4)
	require.Len(t, colors, 4)
	assert.NotEqual(t, colors[0], colors[1])
}
