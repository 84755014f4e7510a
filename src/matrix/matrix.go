package matrix

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

/*
	Matrix is a dense 2D array stored in a single row-major slice.
	It can be resized at runtime without losing the overlapping region and
	serialized to a compact bit-packed binary format (one bit per cell).
*/

const (
	// HeaderSize is the size of the width/height header of the binary format.
	HeaderSize = 8
	// MaxCells bounds the width*height a decoded header may ask for (8192x8192).
	// Payloads shorter than the cells are zero-filled, so the header alone decides the allocation.
	MaxCells = 1 << 26
)

var (
	// ErrShortFile is returned when the encoded data can't even hold the header.
	ErrShortFile = errors.New("matrix: data shorter than header")
	// ErrTooLarge is returned when the header describes a matrix that can't be allocated.
	ErrTooLarge = errors.New("matrix: dimensions too large")
)

// Cell is the set of element types a Matrix can hold.
type Cell interface {
	~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32 | ~int
}

type Matrix[T Cell] struct {
	width  int
	height int
	data   []T
}

// New allocates a zero-filled matrix.
func New[T Cell](width, height int) *Matrix[T] {
	m := &Matrix[T]{}
	m.Resize(width, height, false)
	return m
}

func (m *Matrix[T]) Width() int  { return m.width }
func (m *Matrix[T]) Height() int { return m.height }

// Size returns the total number of cells.
func (m *Matrix[T]) Size() int { return len(m.data) }

// Cells exposes the backing row-major slice.
func (m *Matrix[T]) Cells() []T { return m.data }

//Resize changes the dimensions of the matrix, it is a no-op if they are unchanged.
//With preserve the overlapping rectangle [0,min(w)) x [0,min(h)) is kept and
//everything else is zero, otherwise the whole matrix is zero-filled.
func (m *Matrix[T]) Resize(width, height int, preserve bool) {
	width = max(width, 0)
	height = max(height, 0)
	if width == m.width && height == m.height && m.data != nil {
		return
	}
	data := make([]T, width*height)
	if preserve {
		w := min(m.width, width)
		h := min(m.height, height)
		for y := 0; y < h; y++ {
			copy(data[y*width:y*width+w], m.data[y*m.width:y*m.width+w])
		}
	}
	m.width = width
	m.height = height
	m.data = data
}

// Clear drops all of the elements, leaving a 0x0 matrix.
func (m *Matrix[T]) Clear() {
	m.width = 0
	m.height = 0
	m.data = nil
}

// At returns the element at (x, y).
// The caller must guarantee 0 <= x < Width() and 0 <= y < Height(); the
// coordinates are not validated, an out of range pair silently aliases
// another cell or panics.
func (m *Matrix[T]) At(x, y int) T {
	return m.data[y*m.width+x]
}

// Set stores v at (x, y). Same precondition as At.
func (m *Matrix[T]) Set(x, y int, v T) {
	m.data[y*m.width+x] = v
}

// Ref returns a mutable reference to the element at (x, y). Same precondition as At.
func (m *Matrix[T]) Ref(x, y int) *T {
	return &m.data[y*m.width+x]
}

// InBounds reports whether (x, y) addresses an element.
func (m *Matrix[T]) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

// Get is the bounds-checked version of At.
func (m *Matrix[T]) Get(x, y int) (T, bool) {
	if !m.InBounds(x, y) {
		var zero T
		return zero, false
	}
	return m.At(x, y), true
}

// Fill sets every element to v.
func (m *Matrix[T]) Fill(v T) {
	for i := range m.data {
		m.data[i] = v
	}
}

// CopyFrom makes m an exact copy of src, dimensions included.
func (m *Matrix[T]) CopyFrom(src *Matrix[T]) {
	if m == src {
		return
	}
	if len(m.data) != len(src.data) {
		m.data = make([]T, len(src.data))
	}
	m.width = src.width
	m.height = src.height
	copy(m.data, src.data)
}

func (m *Matrix[T]) Clone() *Matrix[T] {
	c := &Matrix[T]{}
	c.CopyFrom(m)
	return c
}

// Equal reports whether both matrices have the same dimensions and content.
func (m *Matrix[T]) Equal(o *Matrix[T]) bool {
	if m.width != o.width || m.height != o.height {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

//MarshalBinary encodes the matrix: width and height as little-endian uint32
//followed by ceil(w*h/8) bytes, one bit per cell, LSB first in row-major order.
//Any non-zero element is stored as a set bit.
func (m *Matrix[T]) MarshalBinary() ([]byte, error) {
	n := len(m.data)
	buf := make([]byte, HeaderSize+(n+7)/8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(m.width))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(m.height))
	payload := buf[HeaderSize:]
	for i, v := range m.data {
		if v != 0 {
			payload[i/8] |= 1 << (i % 8)
		}
	}
	return buf, nil
}

//UnmarshalBinary decodes data produced by MarshalBinary, destructively resizing
//the matrix to the stored dimensions. A payload shorter than w*h bits leaves the
//remaining cells at 0. The matrix is untouched when an error is returned.
func (m *Matrix[T]) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return ErrShortFile
	}
	width := binary.LittleEndian.Uint32(data[0:4])
	height := binary.LittleEndian.Uint32(data[4:8])
	if uint64(width)*uint64(height) > MaxCells {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	m.Resize(int(width), int(height), false)

	payload := data[HeaderSize:]
	bits := min(len(payload)*8, len(m.data))
	for i := 0; i < bits; i++ {
		m.data[i] = T((payload[i/8] >> (i % 8)) & 0x1)
	}
	for i := bits; i < len(m.data); i++ {
		m.data[i] = 0
	}
	return nil
}

// WriteTo writes the binary encoding of the matrix to w.
func (m *Matrix[T]) WriteTo(w io.Writer) (int64, error) {
	buf, _ := m.MarshalBinary()
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom reads r to EOF and decodes it with UnmarshalBinary.
func (m *Matrix[T]) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return int64(len(buf)), err
	}
	return int64(len(buf)), m.UnmarshalBinary(buf)
}

// SaveToFile writes the binary encoding of the matrix to filename, truncating it.
func (m *Matrix[T]) SaveToFile(filename string) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("matrix: save %s: %w", filename, err)
	}
	if _, err = m.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("matrix: save %s: %w", filename, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("matrix: save %s: %w", filename, err)
	}
	return nil
}

// LoadFromFile replaces the matrix with the content of filename.
// The matrix is unchanged when the file can't be read or is shorter than the header.
func (m *Matrix[T]) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("matrix: load %s: %w", filename, err)
	}
	if err = m.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("matrix: load %s: %w", filename, err)
	}
	return nil
}
