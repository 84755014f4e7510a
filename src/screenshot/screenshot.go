package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Placeholder is replaced by the sequence number in a filename format.
const Placeholder = "%n"

// ErrUnknownFormat is returned for file extensions without an image encoder.
var ErrUnknownFormat = errors.New("screenshot: unknown image format")

//Generator produces numbered filenames from a format like "shots/board %n.png".
//It probes the filesystem and skips numbers whose file already exists.
type Generator struct {
	format  string
	current int
	exists  func(name string) bool
}

func NewGenerator(format string) *Generator {
	return &Generator{format: format, exists: fileExists}
}

// SetFormat changes the format, the counter is kept.
func (g *Generator) SetFormat(format string) {
	g.format = format
}

// Filename returns the filename for the current number.
// A format without the placeholder gets " %n.png" appended.
func (g *Generator) Filename() string {
	f := g.format
	if !strings.Contains(f, Placeholder) {
		f += " " + Placeholder + ".png"
	}
	return strings.ReplaceAll(f, Placeholder, strconv.Itoa(g.current))
}

// Next advances to the first unused filename and returns it.
func (g *Generator) Next() string {
	for {
		g.current++
		if name := g.Filename(); !g.exists(name) {
			return name
		}
	}
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

type encoder func(w io.Writer, img image.Image) error

var encoders = map[string]encoder{
	".png": png.Encode,
	".bmp": bmp.Encode,
	".gif": func(w io.Writer, img image.Image) error { return gif.Encode(w, img, nil) },
	".jpg": func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	},
	".tif": func(w io.Writer, img image.Image) error { return tiff.Encode(w, img, nil) },
}

func init() {
	encoders[".jpeg"] = encoders[".jpg"]
	encoders[".tiff"] = encoders[".tif"]
}

func encoderFor(filename string) (encoder, error) {
	enc, ok := encoders[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, filename)
	}
	return enc, nil
}

// Encode writes img to w in the format selected by the extension of filename.
func Encode(w io.Writer, img image.Image, filename string) error {
	enc, err := encoderFor(filename)
	if err != nil {
		return err
	}
	return enc(w, img)
}

// Save encodes img into filename, creating missing parent directories.
func Save(img image.Image, filename string) (err error) {
	enc, err := encoderFor(filename)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
	}
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("screenshot: %w", cerr)
		}
	}()
	return enc(f, img)
}
