package zone

import (
	"fmt"
	"math"
)

// Band is a discrete load severity derived from occupancy over capacity.
type Band int

const (
	// BandNone marks a zone without a known capacity; it is never produced by BandOf.
	BandNone Band = iota
	BandLow
	BandModerate
	BandElevated
	BandHigh
	BandCritical
)

// bandThresholds are exclusive upper bounds of the load percentage per band.
var bandThresholds = []struct {
	below float64
	band  Band
}{
	{20, BandLow},
	{40, BandModerate},
	{60, BandElevated},
	{80, BandHigh},
}

var bandInfo = map[Band]struct{ name, color string }{
	BandNone:     {"none", ""},
	BandLow:      {"low", "#7fd88f"},
	BandModerate: {"moderate", "#fff59b"},
	BandElevated: {"elevated", "#ffd8a6"},
	BandHigh:     {"high", "#ffaaa5"},
	BandCritical: {"critical", "#ff6b6b"},
}

// BandOf maps a visitor count to a band for the given capacity.
// The load percentage is clamped to [0, 100], so counts above capacity are Critical
// and negative counts are Low. A non-positive capacity is an invariant violation.
func BandOf(count, capacity int) (Band, error) {
	if capacity <= 0 {
		return BandNone, invariantf("band requested for non-positive capacity %d", capacity)
	}

	pct := clampPercent(float64(count) / float64(capacity) * 100)
	for _, t := range bandThresholds {
		if pct < t.below {
			return t.band, nil
		}
	}
	return BandCritical, nil
}

// Percent returns count as a rounded percentage of capacity, clamped to [0, 100].
// It returns 0 for a non-positive capacity.
func Percent(count, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return int(math.Round(clampPercent(float64(count) / float64(capacity) * 100)))
}

func clampPercent(pct float64) float64 {
	return math.Max(0, math.Min(100, pct))
}

// String returns the lower-case band name.
func (b Band) String() string {
	if info, ok := bandInfo[b]; ok {
		return info.name
	}
	return fmt.Sprintf("band(%d)", int(b))
}

// Color returns the heatmap fill color for the band, or "" for BandNone.
func (b Band) Color() string {
	return bandInfo[b].color
}

// MarshalText encodes the band by name.
func (b Band) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a band name.
func (b *Band) UnmarshalText(text []byte) error {
	for band, info := range bandInfo {
		if info.name == string(text) {
			*b = band
			return nil
		}
	}
	return fmt.Errorf("unknown band %q", text)
}

// BandThreshold describes the lower bound of a band for display and docs.
type BandThreshold struct {
	Band       Band   `json:"band" yaml:"band"`
	MinPercent int    `json:"min_percent" yaml:"min_percent"`
	Color      string `json:"color" yaml:"color"`
}

// Thresholds lists every band with the percentage at which it starts.
func Thresholds() []BandThreshold {
	out := make([]BandThreshold, 0, len(bandThresholds)+1)
	lower := 0
	for _, t := range bandThresholds {
		out = append(out, BandThreshold{Band: t.band, MinPercent: lower, Color: t.band.Color()})
		lower = int(t.below)
	}
	return append(out, BandThreshold{Band: BandCritical, MinPercent: lower, Color: BandCritical.Color()})
}
