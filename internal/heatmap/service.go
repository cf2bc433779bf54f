// Package heatmap is the application boundary: it exposes occupancy,
// exhibit curation and interest classification over the zone registry,
// the datastore repositories and the classifier. Transports only bind
// and encode; every rule that needs a decision lives here or below.
package heatmap

import (
	"context"
	"sort"
	"strings"

	"github.com/zoneheat/zoneheat/internal/auth"
	"github.com/zoneheat/zoneheat/internal/classifier"
	"github.com/zoneheat/zoneheat/internal/datastore"
	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
	"github.com/zoneheat/zoneheat/internal/zone"
)

const componentHeatmap = "heatmap"

// Classifier resolves interest text to a zone.
type Classifier interface {
	Classify(ctx context.Context, query string) (classifier.Result, error)
}

// Service implements the boundary operations.
type Service struct {
	registry  *zone.Registry
	occupancy datastore.OccupancyRepository
	ledger    datastore.ExhibitionLedger
	resolver  Classifier
	log       logger.Logger
}

// Deps bundles the collaborators of a Service. Log may be nil.
type Deps struct {
	Registry   *zone.Registry
	Occupancy  datastore.OccupancyRepository
	Ledger     datastore.ExhibitionLedger
	Classifier Classifier
	Log        logger.Logger
}

// New validates deps and returns a Service.
func New(d Deps) (*Service, error) {
	switch {
	case d.Registry == nil:
		return nil, errors.InvariantError("heatmap service requires a zone registry")
	case d.Occupancy == nil:
		return nil, errors.InvariantError("heatmap service requires an occupancy repository")
	case d.Ledger == nil:
		return nil, errors.InvariantError("heatmap service requires an exhibition ledger")
	case d.Classifier == nil:
		return nil, errors.InvariantError("heatmap service requires a classifier")
	}
	log := d.Log
	if log == nil {
		log = logger.Global().Module(componentHeatmap)
	}
	return &Service{
		registry:  d.Registry,
		occupancy: d.Occupancy,
		ledger:    d.Ledger,
		resolver:  d.Classifier,
		log:       log.Module("service"),
	}, nil
}

// Registry returns the zone catalog the service was built with.
func (s *Service) Registry() *zone.Registry { return s.registry }

// Seed creates a zero occupancy record for every registered zone lacking one.
func (s *Service) Seed(ctx context.Context) (int, error) {
	n, err := s.occupancy.Seed(ctx, s.registry.IDs())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("seeded zone occupancy", logger.Int("created", n))
	}
	return n, nil
}

// GetOccupancy lists every stored count, registered zones first in catalog
// order, then unregistered ids sorted.
func (s *Service) GetOccupancy(ctx context.Context) ([]zone.Occupancy, error) {
	records, err := s.occupancy.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]zone.Occupancy, 0, len(records))
	for _, r := range records {
		out = append(out, zone.Occupancy{ZoneID: r.ZoneID, Visitors: r.Visitors})
	}
	order := make(map[string]int, len(s.registry.IDs()))
	for i, id := range s.registry.IDs() {
		order[id] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, iKnown := order[out[i].ZoneID]
		oj, jKnown := order[out[j].ZoneID]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		default:
			return out[i].ZoneID < out[j].ZoneID
		}
	})
	return out, nil
}

// Snapshot joins current occupancy with capacities and load bands.
func (s *Service) Snapshot(ctx context.Context) (zone.Snapshot, error) {
	occ, err := s.GetOccupancy(ctx)
	if err != nil {
		return zone.Snapshot{}, err
	}
	return s.registry.Snapshot(occ), nil
}

// SetOccupancy stores the visitor count for zoneID.
func (s *Service) SetOccupancy(ctx context.Context, zoneID string, visitors int) error {
	if err := s.occupancy.SetVisitors(ctx, zoneID, visitors); err != nil {
		return err
	}
	if c, ok := s.registry.Capacity(zoneID); ok && visitors > c {
		s.log.Warn("zone over capacity",
			logger.String("zone_id", zoneID),
			logger.Int("visitors", visitors),
			logger.Int("capacity", c))
	}
	return nil
}

// GetExhibits lists the zone's exhibits in id order.
func (s *Service) GetExhibits(ctx context.Context, zoneID string) ([]datastore.Exhibit, error) {
	return s.ledger.List(ctx, zoneID)
}

// ReplaceExhibits swaps the zone's whole exhibit list. Requires curation.
func (s *Service) ReplaceExhibits(ctx context.Context, c auth.Capability, zoneID string, names []string) ([]datastore.Exhibit, error) {
	if err := auth.RequireCurator(c, "replace_exhibits"); err != nil {
		return nil, err
	}
	out, err := s.ledger.ReplaceAll(ctx, zoneID, names)
	if err != nil {
		return nil, err
	}
	s.log.Info("exhibits replaced",
		logger.String("zone_id", zoneID),
		logger.Int("count", len(out)),
		logger.String("by", c.Subject()))
	return out, nil
}

// AddExhibit appends one exhibit. Requires curation.
func (s *Service) AddExhibit(ctx context.Context, c auth.Capability, zoneID, name string) (*datastore.Exhibit, error) {
	if err := auth.RequireCurator(c, "add_exhibit"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.NewStd("exhibit name is required")).
			Component(componentHeatmap).
			Category(errors.CategoryValidation).
			Context("zone_id", zoneID).
			Build()
	}
	ex, err := s.ledger.Add(ctx, zoneID, name)
	if err != nil {
		return nil, err
	}
	s.log.Info("exhibit added",
		logger.String("zone_id", zoneID),
		logger.Int64("id", int64(ex.ID)),
		logger.String("by", c.Subject()))
	return ex, nil
}

// RemoveExhibit deletes exhibit id from zoneID. An id owned by another zone
// is reported as not found. Requires curation.
func (s *Service) RemoveExhibit(ctx context.Context, c auth.Capability, zoneID string, id uint) error {
	if err := auth.RequireCurator(c, "remove_exhibit"); err != nil {
		return err
	}
	if err := s.ledger.RemoveByID(ctx, zoneID, id); err != nil {
		return err
	}
	s.log.Info("exhibit removed",
		logger.String("zone_id", zoneID),
		logger.Int64("id", int64(id)),
		logger.String("by", c.Subject()))
	return nil
}

// ClassifyInterest resolves query to a zone. Only a blank query fails.
func (s *Service) ClassifyInterest(ctx context.Context, query string) (classifier.Result, error) {
	return s.resolver.Classify(ctx, query)
}
