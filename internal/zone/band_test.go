package zone

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoneheat/zoneheat/internal/errors"
)

func TestBandOfThresholds(t *testing.T) {
	tests := []struct {
		count, capacity int
		want            Band
	}{
		{0, 40, BandLow},
		{7, 40, BandLow},       // 17.5%
		{8, 40, BandModerate},  // 20%
		{15, 40, BandModerate}, // 37.5%
		{16, 40, BandElevated}, // 40%
		{24, 40, BandHigh},     // 60%
		{31, 40, BandHigh},     // 77.5%
		{32, 40, BandCritical}, // 80%
		{40, 40, BandCritical},
		{400, 40, BandCritical}, // over capacity clamps to 100%
		{-5, 40, BandLow},       // negative clamps to 0%
	}

	for _, tt := range tests {
		got, err := BandOf(tt.count, tt.capacity)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "count=%d capacity=%d", tt.count, tt.capacity)
	}
}

func TestBandOfMonotonicForEveryZone(t *testing.T) {
	for _, z := range Default().All() {
		prev := BandNone
		for count := 0; count <= 2*z.Capacity; count++ {
			band, err := BandOf(count, z.Capacity)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, band, prev, "zone %s count %d", z.ID, count)
			prev = band
		}
		first, _ := BandOf(0, z.Capacity)
		assert.Equal(t, BandLow, first)
	}
}

func TestBandOfRejectsNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := BandOf(1, capacity)
		require.Error(t, err)
		assert.True(t, errors.IsInvariant(err))
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 50, Percent(10, 20))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 100, Percent(50, 20))
	assert.Equal(t, 0, Percent(-1, 20))
	assert.Equal(t, 0, Percent(5, 0))
}

func TestBandColorsAndNames(t *testing.T) {
	assert.Equal(t, "#7fd88f", BandLow.Color())
	assert.Equal(t, "#fff59b", BandModerate.Color())
	assert.Equal(t, "#ffd8a6", BandElevated.Color())
	assert.Equal(t, "#ffaaa5", BandHigh.Color())
	assert.Equal(t, "#ff6b6b", BandCritical.Color())
	assert.Empty(t, BandNone.Color())
	assert.Equal(t, "band(42)", Band(42).String())
}

func TestBandTextEncoding(t *testing.T) {
	data, err := json.Marshal(map[string]Band{"band": BandElevated})
	require.NoError(t, err)
	assert.JSONEq(t, `{"band":"elevated"}`, string(data))

	var b Band
	require.NoError(t, b.UnmarshalText([]byte("high")))
	assert.Equal(t, BandHigh, b)
	assert.Error(t, b.UnmarshalText([]byte("scorching")))
}

func TestThresholds(t *testing.T) {
	th := Thresholds()
	require.Len(t, th, 5)
	assert.Equal(t, BandLow, th[0].Band)
	assert.Equal(t, 0, th[0].MinPercent)
	assert.Equal(t, BandCritical, th[4].Band)
	assert.Equal(t, 80, th[4].MinPercent)
}
