package zone

import "sort"

// Occupancy is a visitor count reported for a zone id, which may be unregistered.
type Occupancy struct {
	ZoneID   string
	Visitors int
}

// ZoneLoad is one display row of a snapshot.
type ZoneLoad struct {
	ID       string `json:"zone_id"`
	Name     string `json:"name,omitempty"`
	Label    string `json:"label,omitempty"`
	Capacity int    `json:"capacity"`
	Visitors int    `json:"current_visitors"`
	Percent  int    `json:"percent"`
	Band     Band   `json:"band"`
	Color    string `json:"color,omitempty"`
	Known    bool   `json:"known"`
}

// Snapshot is the joined view of registry and occupancy used by heatmap displays.
type Snapshot struct {
	Zones         []ZoneLoad `json:"zones"`
	TotalVisitors int        `json:"total_visitors"`
	TotalCapacity int        `json:"total_capacity"`
	Percent       int        `json:"percent"`
	Band          Band       `json:"band"`
}

// Snapshot joins records with the catalog. Registered zones come first in
// declaration order; a registered zone without a record shows zero visitors.
// Records for unregistered ids follow, sorted by id, with capacity 0 and BandNone.
// Totals cover registered zones only.
func (r *Registry) Snapshot(records []Occupancy) Snapshot {
	counts := make(map[string]int, len(records))
	for _, rec := range records {
		counts[rec.ZoneID] = rec.Visitors
	}

	snap := Snapshot{Zones: make([]ZoneLoad, 0, len(r.zones)+len(counts))}
	for _, z := range r.zones {
		visitors := counts[z.ID]
		band, _ := BandOf(visitors, z.Capacity) // capacity validated by NewRegistry
		snap.Zones = append(snap.Zones, ZoneLoad{
			ID:       z.ID,
			Name:     z.Name,
			Label:    z.Label,
			Capacity: z.Capacity,
			Visitors: visitors,
			Percent:  Percent(visitors, z.Capacity),
			Band:     band,
			Color:    band.Color(),
			Known:    true,
		})
		snap.TotalVisitors += visitors
		snap.TotalCapacity += z.Capacity
	}

	var unknown []string
	for id := range counts {
		if !r.Has(id) {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		snap.Zones = append(snap.Zones, ZoneLoad{ID: id, Visitors: counts[id], Band: BandNone})
	}

	snap.Percent = Percent(snap.TotalVisitors, snap.TotalCapacity)
	snap.Band, _ = BandOf(snap.TotalVisitors, snap.TotalCapacity)
	return snap
}
