package datastore

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/zoneheat/zoneheat/internal/errors"
)

// ExhibitionLedger manages the ordered exhibit list of each zone.
type ExhibitionLedger interface {
	// List returns the zone's exhibits in ascending id order.
	List(ctx context.Context, zoneID string) ([]Exhibit, error)
	// ReplaceAll atomically swaps the zone's exhibits for names, in input order,
	// and returns the committed list. An empty names slice clears the zone.
	ReplaceAll(ctx context.Context, zoneID string, names []string) ([]Exhibit, error)
	// Add appends one exhibit and returns it with its assigned id.
	Add(ctx context.Context, zoneID, name string) (*Exhibit, error)
	// RemoveByID deletes an exhibit only if it belongs to zoneID.
	RemoveByID(ctx context.Context, zoneID string, id uint) error
}

type exhibitionLedger struct {
	db *gorm.DB
	repoConfig
}

// NewExhibitionLedger creates an ExhibitionLedger backed by db.
func NewExhibitionLedger(db *gorm.DB, opts ...Option) ExhibitionLedger {
	return &exhibitionLedger{
		db:         db,
		repoConfig: newRepoConfig("exhibits", opts),
	}
}

// List implements ExhibitionLedger.
func (l *exhibitionLedger) List(ctx context.Context, zoneID string) (exhibits []Exhibit, err error) {
	defer l.observe("exhibits_list", time.Now(), &err)

	if err := l.checkZone(zoneID); err != nil {
		return nil, err
	}

	exhibits, err = listZone(l.db.WithContext(ctx), zoneID)
	if err != nil {
		return nil, dbError(err, "exhibits_list", errors.PriorityMedium, "zone_id", zoneID)
	}
	return exhibits, nil
}

// ReplaceAll implements ExhibitionLedger.
//
// Delete, inserts and the re-read share one transaction, so readers never see a
// partially replaced list. Two concurrent replacements of the same zone are
// last-commit-wins; the loser's entries are removed, never mixed in.
func (l *exhibitionLedger) ReplaceAll(ctx context.Context, zoneID string, names []string) (exhibits []Exhibit, err error) {
	defer l.observe("exhibits_replace", time.Now(), &err)

	if err := l.checkZone(zoneID); err != nil {
		return nil, err
	}

	trimmed := make([]string, len(names))
	for i, name := range names {
		trimmed[i] = strings.TrimSpace(name)
		if trimmed[i] == "" {
			return nil, validationError("exhibit names must not be empty", "exhibitions", i)
		}
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockZone(tx, zoneID); err != nil {
			return err
		}

		if err := tx.Where("zone = ?", zoneID).Delete(&Exhibit{}).Error; err != nil {
			return err
		}

		// One insert per name keeps id assignment in input order on every dialect.
		for _, name := range trimmed {
			if err := tx.Create(&Exhibit{Zone: zoneID, Name: name}).Error; err != nil {
				return err
			}
		}

		var txErr error
		exhibits, txErr = listZone(tx, zoneID)
		return txErr
	})
	if err != nil {
		return nil, dbError(err, "exhibits_replace", errors.PriorityHigh,
			"zone_id", zoneID, "count", len(trimmed))
	}

	return exhibits, nil
}

// Add implements ExhibitionLedger.
func (l *exhibitionLedger) Add(ctx context.Context, zoneID, name string) (exhibit *Exhibit, err error) {
	defer l.observe("exhibits_add", time.Now(), &err)

	if err := l.checkZone(zoneID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationError("exhibit name required", "exhibitName", name)
	}

	exhibit = &Exhibit{Zone: zoneID, Name: name}
	if err := l.db.WithContext(ctx).Create(exhibit).Error; err != nil {
		return nil, dbError(err, "exhibits_add", errors.PriorityMedium, "zone_id", zoneID)
	}

	return exhibit, nil
}

// RemoveByID implements ExhibitionLedger. An id that is absent and an id owned by
// another zone both yield ErrExhibitNotFound.
func (l *exhibitionLedger) RemoveByID(ctx context.Context, zoneID string, id uint) (err error) {
	defer l.observe("exhibits_remove", time.Now(), &err)

	if err := l.checkZone(zoneID); err != nil {
		return err
	}

	result := l.db.WithContext(ctx).Where("id = ? AND zone = ?", id, zoneID).Delete(&Exhibit{})
	if result.Error != nil {
		return dbError(result.Error, "exhibits_remove", errors.PriorityMedium,
			"zone_id", zoneID, "exhibit_id", id)
	}
	if result.RowsAffected == 0 {
		return notFoundError(ErrExhibitNotFound, "exhibit", "zone_id", zoneID, "exhibit_id", id)
	}

	return nil
}

func listZone(db *gorm.DB, zoneID string) ([]Exhibit, error) {
	exhibits := make([]Exhibit, 0)
	err := db.Where("zone = ?", zoneID).Order("id ASC").Find(&exhibits).Error
	return exhibits, err
}

// lockZone serializes replacements of one zone where the dialect would otherwise
// let a concurrent DELETE miss rows inserted by a transaction it waited on.
// SQLite takes the database write lock at BEGIN and MySQL's locking DELETE reads
// the latest committed rows, so only PostgreSQL needs an explicit lock.
func lockZone(tx *gorm.DB, zoneID string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "exhibitions:"+zoneID).Error
}
