package matrix

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillPattern(m *Matrix[uint8]) {
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			m.Set(x, y, uint8((x*7+y*3)%5))
		}
	}
}

func TestResizePreservesOverlap(t *testing.T) {
	sizes := [][2]int{{3, 3}, {10, 2}, {2, 10}, {12, 9}, {0, 4}, {8, 6}}
	for _, s := range sizes {
		m := New[uint8](8, 6)
		fillPattern(m)
		orig := m.Clone()

		m.Resize(s[0], s[1], true)
		require.Equal(t, s[0], m.Width())
		require.Equal(t, s[1], m.Height())
		for y := 0; y < m.Height(); y++ {
			for x := 0; x < m.Width(); x++ {
				want := uint8(0)
				if x < orig.Width() && y < orig.Height() {
					want = orig.At(x, y)
				}
				assert.Equalf(t, want, m.At(x, y), "size %v cell (%d,%d)", s, x, y)
			}
		}
	}
}

func TestResizeDestructive(t *testing.T) {
	m := New[uint8](4, 4)
	m.Fill(1)
	m.Resize(5, 3, false)
	for _, v := range m.Cells() {
		require.Zero(t, v)
	}

	// unchanged dimensions are a no-op, even when not preserving
	m.Fill(2)
	m.Resize(5, 3, false)
	assert.Equal(t, uint8(2), m.At(4, 2))
}

func TestCheckedAccess(t *testing.T) {
	m := New[uint8](3, 2)
	m.Set(2, 1, 9)

	v, ok := m.Get(2, 1)
	assert.True(t, ok)
	assert.Equal(t, uint8(9), v)

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 2}} {
		_, ok = m.Get(p[0], p[1])
		assert.Falsef(t, ok, "%v must be out of bounds", p)
	}

	*m.Ref(0, 0) = 4
	assert.Equal(t, uint8(4), m.At(0, 0))
}

func TestEncodingLayout(t *testing.T) {
	m := New[uint8](3, 3)
	m.Set(0, 0, 1)
	m.Set(2, 0, 3) // non-zero values are stored as a set bit
	m.Set(2, 2, 1) // bit 8

	data, err := m.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 0, 0, 0, 3, 0, 0, 0, 0x05, 0x01}, data)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sizes := [][2]int{{0, 0}, {0, 5}, {7, 0}, {1, 1}, {8, 1}, {9, 7}, {64, 33}}
	for _, s := range sizes {
		m := New[uint8](s[0], s[1])
		for i := range m.Cells() {
			if (i*31)%7 < 3 {
				m.Cells()[i] = 1
			}
		}
		name := filepath.Join(dir, "board")
		require.NoError(t, m.SaveToFile(name))

		info, err := os.Stat(name)
		require.NoError(t, err)
		assert.Equal(t, int64(HeaderSize+(s[0]*s[1]+7)/8), info.Size())

		loaded := New[uint8](2, 2)
		require.NoError(t, loaded.LoadFromFile(name))
		assert.Truef(t, m.Equal(loaded), "round trip of %v", s)
	}
}

func TestLoadTruncatedPayloadZeroFills(t *testing.T) {
	var buf bytes.Buffer
	m := New[uint8](4, 4)
	m.Fill(1)
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	// keep only the first payload byte: 8 of 16 cells
	data := buf.Bytes()[:HeaderSize+1]
	loaded := New[uint8](4, 4)
	loaded.Fill(1)
	_, err = loaded.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	for i, v := range loaded.Cells() {
		if i < 8 {
			assert.Equal(t, uint8(1), v)
		} else {
			assert.Equalf(t, uint8(0), v, "cell %d", i)
		}
	}
}

func TestLoadShortFileKeepsState(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "short")
	require.NoError(t, os.WriteFile(name, []byte{1, 2, 3, 4, 5, 6, 7}, 0o644))

	m := New[uint8](3, 3)
	fillPattern(m)
	orig := m.Clone()

	err := m.LoadFromFile(name)
	assert.ErrorIs(t, err, ErrShortFile)
	assert.True(t, m.Equal(orig))

	err = m.LoadFromFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, m.Equal(orig))
}

func TestLoadRejectsHugeHeader(t *testing.T) {
	m := New[uint8](2, 2)
	err := m.UnmarshalBinary([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, 2, m.Width())

	//40000x40000 with a tiny payload must not be allocated
	data := []byte{0x40, 0x9c, 0, 0, 0x40, 0x9c, 0, 0, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	assert.ErrorIs(t, m.UnmarshalBinary(data), ErrTooLarge)
	assert.Equal(t, 2, m.Height())

	//the largest accepted header still zero-fills a short payload
	data = []byte{0, 0x20, 0, 0, 0, 0x20, 0, 0, 0x01}
	require.NoError(t, m.UnmarshalBinary(data))
	assert.Equal(t, MaxCells, m.Size())
	assert.Equal(t, uint8(1), m.At(0, 0))
	assert.Equal(t, uint8(0), m.At(8191, 8191))
}

func TestSaveFailsOnBadPath(t *testing.T) {
	m := New[uint8](2, 2)
	err := m.SaveToFile(filepath.Join(t.TempDir(), "no", "such", "dir", "board"))
	assert.Error(t, err)
}
