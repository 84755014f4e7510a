package palette

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora"
)

// ParseColor reads a color code in the "#RRGGBB" or "#RGB" form.
// Characters that are not hex digits are skipped, so "FF0000" and "#ff-00-00" are accepted too.
func ParseColor(s string) (color.RGBA, error) {
	var hex strings.Builder
	for _, c := range s {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			hex.WriteRune(c)
		}
	}
	digits := hex.String()
	if len(digits) != 3 && len(digits) != 6 {
		return color.RGBA{}, fmt.Errorf("palette: invalid color code %q", s)
	}
	w := len(digits) / 3
	var rgb [3]uint8
	for i := range rgb {
		part := digits[i*w : (i+1)*w]
		v, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("palette: invalid color code %q: %w", s, err)
		}
		if w == 1 {
			v *= 0x11
		}
		rgb[i] = uint8(v)
	}
	return color.RGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, nil
}

// FormatColor returns the "#RRGGBB" code of c.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Palette maps cell states to colors: index 0 is the dead color,
// higher indexes are successive ages of a live cell.
type Palette []color.RGBA

// Default is the black/white palette used when none is configured.
func Default() Palette {
	return Palette{
		{A: 0xff},
		{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// Parse builds a palette from color codes. Invalid codes are reported, and a
// palette with fewer than two colors falls back to Default.
func Parse(codes []string) (Palette, error) {
	p := make(Palette, 0, len(codes))
	for _, code := range codes {
		c, err := ParseColor(code)
		if err != nil {
			return Default(), err
		}
		p = append(p, c)
	}
	if len(p) < 2 {
		return Default(), nil
	}
	return p, nil
}

// MaxState is the largest cell state the palette can display.
func (p Palette) MaxState() uint8 {
	if len(p) < 2 {
		return 1
	}
	return uint8(min(len(p)-1, 255))
}

// Color returns the color of a state, states above MaxState use the last color.
func (p Palette) Color(state uint8) color.RGBA {
	if len(p) == 0 {
		return color.RGBA{}
	}
	return p[min(int(state), len(p)-1)]
}

// Strings returns the color codes of the palette.
func (p Palette) Strings() []string {
	s := make([]string, len(p))
	for i, c := range p {
		s[i] = FormatColor(c)
	}
	return s
}

// Reversed returns a copy of the palette in reverse order.
func (p Palette) Reversed() Palette {
	r := make(Palette, len(p))
	for i, c := range p {
		r[len(p)-1-i] = c
	}
	return r
}

// Index returns the nearest xterm 256-color index of c.
// Only the 6x6x6 color cube and the grayscale ramp are considered.
func Index(c color.RGBA) uint8 {
	level := func(v uint8) int {
		if v < 48 {
			return 0
		}
		if v < 115 {
			return 1
		}
		return int(v-35) / 40
	}
	r, g, b := level(c.R), level(c.G), level(c.B)
	if r == g && g == b {
		avg := (int(c.R) + int(c.G) + int(c.B)) / 3
		if avg < 8 {
			return 16
		}
		if avg > 238 {
			return 231
		}
		return uint8(232 + (avg-8)/10)
	}
	return uint8(16 + 36*r + 6*g + b)
}

// Colorize paints arg with the terminal color closest to the given state.
func (p Palette) Colorize(state uint8, arg interface{}) aurora.Value {
	return aurora.Index(Index(p.Color(state)), arg)
}
