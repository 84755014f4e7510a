package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalRoundTrip(t *testing.T) {
	for _, s := range []string{"B3/S23", "B36/S23", "B/S", "B012345678/S012345678", "B2/S", "B/S3"} {
		r := New()
		assert.Zero(t, r.SetFromString(s))
		assert.Equal(t, s, r.String())
	}
}

func TestPermissiveParsing(t *testing.T) {
	tests := []struct {
		in      string
		out     string
		ignored int
	}{
		{"23/3", "B3/S23", 0},
		{"S23/B3", "B3/S23", 0},
		{"b3\\s23", "B3/S23", 0},
		{"B3S23", "B3/S23", 0},
		{"3", "B/S3", 0},
		{"/36", "B36/S", 0},
		{"B39/S2x3", "B3/S23", 2},
		{"", "B/S", 0},
		{"hello", "B/S", 5},
		{"B3/S23/4", "B34/S23", 0},
	}
	for _, tt := range tests {
		r := Parse("B1/S1")
		ignored := r.SetFromString(tt.in)
		assert.Equalf(t, tt.out, r.String(), "input %q", tt.in)
		assert.Equalf(t, tt.ignored, ignored, "input %q", tt.in)
	}
}

func TestSetFromStringClears(t *testing.T) {
	r := Parse("B012/S345")
	r.SetFromString("B3")
	assert.Equal(t, "B3/S", r.String())
}

func TestEmptyInputYieldsAllFalse(t *testing.T) {
	r := Parse("garbage!")
	assert.True(t, r.Empty())
	for count := 0; count <= MaxNeighbors; count++ {
		assert.False(t, r.Get(true, count))
		assert.False(t, r.Get(false, count))
	}
}

func TestGet(t *testing.T) {
	r := Parse(Default)
	assert.True(t, r.Get(false, 3))
	assert.False(t, r.Get(false, 2))
	assert.True(t, r.Get(true, 2))
	assert.True(t, r.Get(true, 3))
	assert.False(t, r.Get(true, 4))
	assert.False(t, r.Get(true, 1))
}

func TestSetRuleInvalidatesCache(t *testing.T) {
	r := Parse(Default)
	require.Equal(t, "B3/S23", r.String())

	r.SetRule(Birth, 6, true)
	assert.True(t, r.Rule(Birth, 6))
	assert.Equal(t, "B36/S23", r.String())

	r.SetRule(Survival, 2, false)
	assert.Equal(t, "B36/S3", r.String())

	r.Clear()
	assert.Equal(t, "B/S", r.String())
}

func TestEqual(t *testing.T) {
	assert.True(t, Parse("23/3").Equal(Parse("B3/S23")))
	assert.False(t, Parse("B3/S23").Equal(Parse("B36/S23")))
}
