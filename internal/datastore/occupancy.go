package datastore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zoneheat/zoneheat/internal/errors"
	"github.com/zoneheat/zoneheat/internal/logger"
)

// OccupancyRepository stores one visitor count per zone.
type OccupancyRepository interface {
	// ListAll returns every stored record. Order is unspecified.
	ListAll(ctx context.Context) ([]OccupancyRecord, error)
	// SetVisitors upserts the count for zoneID. Counts above capacity are stored unchanged.
	SetVisitors(ctx context.Context, zoneID string, count int) error
	// Seed inserts a zero record for each id that has none and returns how many were created.
	Seed(ctx context.Context, zoneIDs []string) (int, error)
}

type occupancyRepository struct {
	db *gorm.DB
	repoConfig
}

// NewOccupancyRepository creates an OccupancyRepository backed by db.
func NewOccupancyRepository(db *gorm.DB, opts ...Option) OccupancyRepository {
	return &occupancyRepository{
		db:         db,
		repoConfig: newRepoConfig("occupancy", opts),
	}
}

// ListAll implements OccupancyRepository.
func (r *occupancyRepository) ListAll(ctx context.Context) (records []OccupancyRecord, err error) {
	defer r.observe("occupancy_list", time.Now(), &err)

	if err := r.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, dbError(err, "occupancy_list", errors.PriorityMedium, "table", OccupancyRecord{}.TableName())
	}
	return records, nil
}

// SetVisitors implements OccupancyRepository.
func (r *occupancyRepository) SetVisitors(ctx context.Context, zoneID string, count int) (err error) {
	defer r.observe("occupancy_set", time.Now(), &err)

	if err := r.checkZone(zoneID); err != nil {
		return err
	}
	if count < 0 {
		return validationError("visitor count must be a non-negative integer", "visitors", count)
	}

	record := OccupancyRecord{ZoneID: zoneID, Visitors: count}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "zone_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_visitors", "updated_at"}),
	}).Create(&record)
	if result.Error != nil {
		return dbError(result.Error, "occupancy_set", errors.PriorityMedium,
			"zone_id", zoneID, "visitors", count)
	}

	r.log.Debug("occupancy updated",
		logger.String("zone_id", zoneID),
		logger.Int("visitors", count))
	return nil
}

// Seed implements OccupancyRepository.
func (r *occupancyRepository) Seed(ctx context.Context, zoneIDs []string) (created int, err error) {
	defer r.observe("occupancy_seed", time.Now(), &err)

	if len(zoneIDs) == 0 {
		return 0, nil
	}

	records := make([]OccupancyRecord, 0, len(zoneIDs))
	for _, id := range zoneIDs {
		if err := r.checkZone(id); err != nil {
			return 0, err
		}
		records = append(records, OccupancyRecord{ZoneID: id})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&records)
	if result.Error != nil {
		return 0, dbError(result.Error, "occupancy_seed", errors.PriorityHigh, "zones", len(zoneIDs))
	}

	created = int(result.RowsAffected)
	if created > 0 {
		r.log.Debug("seeded occupancy records", logger.Int("created", created))
	}
	return created, nil
}
