package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := map[string]color.RGBA{
		"#000000": {A: 0xff},
		"#FF8000": {R: 0xff, G: 0x80, A: 0xff},
		"#f80":    {R: 0xff, G: 0x88, A: 0xff},
		"00ff00":  {G: 0xff, A: 0xff},
	}
	for in, want := range tests {
		got, err := ParseColor(in)
		require.NoErrorf(t, err, "input %q", in)
		assert.Equalf(t, want, got, "input %q", in)
	}

	for _, in := range []string{"", "#12", "#12345", "#1234567", "red"} {
		_, err := ParseColor(in)
		assert.Errorf(t, err, "input %q", in)
	}
}

func TestFormatColor(t *testing.T) {
	assert.Equal(t, "#0A10FF", FormatColor(color.RGBA{R: 10, G: 16, B: 255, A: 255}))
}

func TestParsePalette(t *testing.T) {
	p, err := Parse([]string{"#000", "#F00", "#FF0", "#FFF"})
	require.NoError(t, err)
	assert.Equal(t, uint8(3), p.MaxState())
	assert.Equal(t, []string{"#000000", "#FF0000", "#FFFF00", "#FFFFFF"}, p.Strings())

	// too few colors fall back to black and white
	p, err = Parse([]string{"#F00"})
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
	assert.Equal(t, uint8(1), p.MaxState())

	_, err = Parse([]string{"#000", "nope"})
	assert.Error(t, err)
}

func TestColorClampsState(t *testing.T) {
	p := Default()
	assert.Equal(t, p[1], p.Color(7))
	assert.Equal(t, p[0], p.Color(0))
}

func TestReversed(t *testing.T) {
	p := Default()
	r := p.Reversed()
	assert.Equal(t, p[0], r[1])
	assert.Equal(t, p[1], r[0])
}

func TestIndex(t *testing.T) {
	assert.Equal(t, uint8(16), Index(color.RGBA{A: 255}))
	assert.Equal(t, uint8(231), Index(color.RGBA{R: 255, G: 255, B: 255, A: 255}))
	assert.Equal(t, uint8(196), Index(color.RGBA{R: 255, A: 255}))
	assert.Equal(t, uint8(46), Index(color.RGBA{G: 255, A: 255}))
}
