package geo

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Grammars(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"decimal pair", "25.2, 89.3", "25.2,89.3"},
		{"decimal pair without space", "25.2,89.3", "25.2,89.3"},
		{"signed decimal pair", "-33.8688, 151.2093", "-33.8688,151.2093"},
		{"explicit plus", "+10, +20", "10,20"},
		{"integers", "0, 0", "0,0"},
		{"degree and cardinal", "25.2°N, 89.3°E", "25.2,89.3"},
		{"suffix right after number", "25.2N, 89.3E", "25.2,89.3"},
		{"south west", "25.2S, 89.3W", "-25.2,-89.3"},
		{"lower case", "25.2s, 89.3w", "-25.2,-89.3"},
		{"space before suffix", "25.2 ° S, 89.3 W", "-25.2,-89.3"},
		{"degree without cardinal", "25.2°, 89.3°", "25.2,89.3"},
		{"mixed suffix", "25.2N, 89.3", "25.2,89.3"},
		{"surrounding spaces", "  12.5 ,  -7.25  ", "12.5,-7.25"},
		{"boundaries", "90, -180", "90,-180"},
		{"negative zero", "-0, 0W", "0,0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.raw)
			require.Equal(t, Valid, res.Status, "raw=%q", tt.raw)
			assert.Equal(t, tt.want, res.Value)
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"out of range", "100,200"},
		{"latitude out of range", "90.0001, 10"},
		{"longitude out of range", "10, -180.5"},
		{"southern latitude out of range", "91S, 10E"},
		{"three parts", "1,2,3"},
		{"single number", "25.2"},
		{"words", "near the old bridge"},
		{"swapped axes", "25.2E, 89.3N"},
		{"sign and cardinal", "-25.2S, 89.3E"},
		{"garbage suffix", "25.2X, 89.3E"},
		{"missing number", "N, E"},
		{"trailing dot", "25., 89.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Normalize(tt.raw)
			assert.Equal(t, Invalid, res.Status, "raw=%q", tt.raw)
			assert.Empty(t, res.Value)
		})
	}
}

func TestNormalize_RejectsOverlongInput(t *testing.T) {
	raw := "1." + strings.Repeat("0", MaxInputLength) + ", 2"
	assert.Equal(t, Result{Status: Invalid}, Normalize(raw))

	short := "1." + strings.Repeat("0", 10) + ", 2"
	assert.Equal(t, Valid, Normalize(short).Status)
}

func TestNormalize_Absent(t *testing.T) {
	assert.Equal(t, Absent, Normalize("").Status)
	assert.Equal(t, Absent, Normalize("   ").Status)
	assert.Equal(t, Absent, NormalizePtr(nil).Status)

	raw := "1,2"
	assert.Equal(t, Valid, NormalizePtr(&raw).Status)
}

func TestNormalize_DecimalPairsRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		lat := rnd.Float64()*180 - 90
		lng := rnd.Float64()*360 - 180
		raw := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)

		res := Normalize(raw)
		require.Equal(t, Valid, res.Status, raw)
		assert.Equal(t, lat, res.Point.Lat)
		assert.Equal(t, lng, res.Point.Lng)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"25.2°N, 89.3°E",
		"25.2S, 89.3W",
		"-33.8688, 151.2093",
		"+1.50, 2.250",
		"100,200",
		"garbage",
		"",
		"0S, 0W",
	}

	for _, raw := range inputs {
		first := Normalize(raw)
		second := NormalizePtr(first.Stored())
		assert.Equal(t, first.Stored(), second.Stored(), "raw=%q", raw)

		switch first.Status {
		case Valid:
			assert.Equal(t, first, second, "raw=%q", raw)
		default:
			assert.Nil(t, first.Stored(), "raw=%q", raw)
			assert.Equal(t, Absent, second.Status, "discarded input stores nothing, raw=%q", raw)
		}
	}
}

func TestParse(t *testing.T) {
	p, ok := Parse("25.4°N, 89.1°E")
	require.True(t, ok)
	assert.Equal(t, Point{Lat: 25.4, Lng: 89.1}, p)

	_, ok = Parse("nowhere")
	assert.False(t, ok)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "invalid", Invalid.String())
}
