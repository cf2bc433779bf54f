package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoneheat/zoneheat/internal/errors"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{"zone1", "zone2", "zone3", "zone4", "zone5", "zone6", "zone7", "zone8"}, r.IDs())
	assert.Equal(t, 225, r.TotalCapacity())

	capacity, ok := r.Capacity("zone6")
	require.True(t, ok)
	assert.Equal(t, 15, capacity)

	z, ok := r.Get("zone8")
	require.True(t, ok)
	assert.Equal(t, "zone8 - Smart Cafe", z.Label)

	assert.False(t, r.Has("zone9"))
	_, ok = r.Capacity("zone9")
	assert.False(t, ok)
}

func TestAllReturnsCopy(t *testing.T) {
	r := Default()
	zones := r.All()
	zones[0].Capacity = 999

	capacity, _ := r.Capacity("zone1")
	assert.Equal(t, 30, capacity)
}

func TestNewRegistryInvariants(t *testing.T) {
	tests := []struct {
		name  string
		zones []Zone
	}{
		{"empty", nil},
		{"zero capacity", []Zone{{ID: "zone1", Capacity: 0}}},
		{"negative capacity", []Zone{{ID: "zone1", Capacity: -3}}},
		{"missing id", []Zone{{ID: " ", Capacity: 3}}},
		{"duplicate", []Zone{{ID: "zone1", Capacity: 3}, {ID: "zone1", Capacity: 4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.zones...)
			require.Error(t, err)
			assert.True(t, errors.IsInvariant(err))
		})
	}

	assert.Panics(t, func() { MustNewRegistry(Zone{ID: "z", Capacity: 0}) })
}

func TestLookupLabel(t *testing.T) {
	r := Default()

	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"zone3 - ACES", "zone3", true},
		{"  Zone8 - Smart Cafe\n", "zone8", true},
		{"zone10 - nowhere", "", false},
		{"the smart cafe", "", false},
		{"zone1x", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			z, ok := r.LookupLabel(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, z.ID)
		})
	}
}

func TestBandFor(t *testing.T) {
	r := Default()

	band, err := r.BandFor("zone6", 12) // 80% of 15
	require.NoError(t, err)
	assert.Equal(t, BandCritical, band)

	_, err = r.BandFor("zone42", 1)
	assert.True(t, errors.IsNotFound(err))
}
