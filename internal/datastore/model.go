package datastore

import "time"

// OccupancyRecord is the current visitor count of one zone.
type OccupancyRecord struct {
	ZoneID    string    `gorm:"column:zone_id;primaryKey;size:64" json:"zone_id"`
	Visitors  int       `gorm:"column:current_visitors;not null;default:0" json:"current_visitors"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName keeps the table name used by existing deployments.
func (OccupancyRecord) TableName() string {
	return "zone_visitors"
}

// Exhibit is one named item shown in a zone. IDs are unique across all zones.
type Exhibit struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Zone      string    `gorm:"column:zone;size:64;not null;index:idx_exhibitions_zone" json:"zone"`
	Name      string    `gorm:"column:exhibition_name;size:255;not null" json:"exhibition_name"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName keeps the table name used by existing deployments.
func (Exhibit) TableName() string {
	return "exhibitions"
}
