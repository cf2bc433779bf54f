// Package zone holds the fixed catalog of exhibition zones and the load band
// function used to classify occupancy against capacity.
package zone

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/zoneheat/zoneheat/internal/errors"
)

// Zone is one physical exhibition area. Zones are immutable after registry construction.
type Zone struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`   // short display name
	Label    string `json:"label" yaml:"label"` // id plus descriptive suffix, as shown to visitors
	Theme    string `json:"theme" yaml:"theme"` // what the zone is about, used in classifier prompts
	Capacity int    `json:"capacity" yaml:"capacity"`
}

var defaultZones = []Zone{
	{ID: "zone1", Name: "Hospital", Label: "zone1 - hospital", Theme: "hospital", Capacity: 30},
	{ID: "zone2", Name: "ESCAL", Label: "zone2 - ESCAL", Theme: "ESCAL", Capacity: 25},
	{ID: "zone3", Name: "ACES", Label: "zone3 - ACES (Association of Computer Engineering Students)", Theme: "ACES(association of computer engineering students)", Capacity: 40},
	{ID: "zone4", Name: "Gaming Zone", Label: "zone4 - gaming zone", Theme: "gaming zone", Capacity: 20},
	{ID: "zone5", Name: "Agricultural", Label: "zone5 - Agricultural zone", Theme: "Agricultural zone", Capacity: 35},
	{ID: "zone6", Name: "Industrial", Label: "zone6 - industrial zone", Theme: "industrial zone", Capacity: 15},
	{ID: "zone7", Name: "Smart Home", Label: "zone7 - Smart Home", Theme: "Smart Home", Capacity: 30},
	{ID: "zone8", Name: "Smart Cafe", Label: "zone8 - Smart Cafe", Theme: "Smart Cafe", Capacity: 30},
}

// Registry is the read-only zone catalog shared by every component.
type Registry struct {
	zones []Zone
	byID  map[string]int
}

// NewRegistry validates zones and builds a registry preserving declaration order.
// A non-positive capacity, an empty id or a duplicate id is an invariant violation.
func NewRegistry(zones ...Zone) (*Registry, error) {
	if len(zones) == 0 {
		return nil, errors.InvariantError("zone registry must contain at least one zone")
	}

	r := &Registry{
		zones: slices.Clone(zones),
		byID:  make(map[string]int, len(zones)),
	}
	for i, z := range r.zones {
		switch {
		case strings.TrimSpace(z.ID) == "":
			return nil, invariantf("zone at position %d has no id", i)
		case z.Capacity <= 0:
			return nil, invariantf("zone %s has non-positive capacity %d", z.ID, z.Capacity)
		}
		if _, dup := r.byID[z.ID]; dup {
			return nil, invariantf("zone %s is declared twice", z.ID)
		}
		r.byID[z.ID] = i
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on an invalid table.
func MustNewRegistry(zones ...Zone) *Registry {
	r, err := NewRegistry(zones...)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the deployment's eight-zone catalog.
func Default() *Registry {
	return MustNewRegistry(defaultZones...)
}

// Get returns the zone with the given id.
func (r *Registry) Get(id string) (Zone, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Zone{}, false
	}
	return r.zones[i], true
}

// Has reports whether id names a registered zone.
func (r *Registry) Has(id string) bool {
	_, ok := r.byID[id]
	return ok
}

// All returns the zones in declaration order. The slice is a copy.
func (r *Registry) All() []Zone {
	return slices.Clone(r.zones)
}

// IDs returns the zone ids in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.zones))
	for i, z := range r.zones {
		ids[i] = z.ID
	}
	return ids
}

// Capacity returns the capacity of a registered zone.
func (r *Registry) Capacity(id string) (int, bool) {
	z, ok := r.Get(id)
	return z.Capacity, ok
}

// TotalCapacity sums the capacity of every registered zone.
func (r *Registry) TotalCapacity() int {
	total := 0
	for _, z := range r.zones {
		total += z.Capacity
	}
	return total
}

// BandFor classifies count against the capacity of zone id.
func (r *Registry) BandFor(id string, count int) (Band, error) {
	capacity, ok := r.Capacity(id)
	if !ok {
		return BandNone, errors.NotFoundError("zone", id)
	}
	return BandOf(count, capacity)
}

var zoneIDPrefix = regexp.MustCompile(`(?i)^\s*(zone[0-9]+)\b`)

// LookupLabel resolves free text such as "zone3 - ACES" or "Zone8" to a
// registered zone by its leading zone id token.
func (r *Registry) LookupLabel(text string) (Zone, bool) {
	m := zoneIDPrefix.FindStringSubmatch(text)
	if m == nil {
		return Zone{}, false
	}
	return r.Get(strings.ToLower(m[1]))
}

func invariantf(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("zone").
		Category(errors.CategoryInvariant).
		Priority(errors.PriorityCritical).
		Build()
}

// String implements fmt.Stringer for log output.
func (z Zone) String() string {
	return fmt.Sprintf("%s(%s, cap %d)", z.ID, z.Name, z.Capacity)
}
