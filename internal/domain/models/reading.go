package models

import "time"

// ValidationStatus represents the validation outcome attached to a reading
type ValidationStatus string

const (
	ValidationValid      ValidationStatus = "valid"
	ValidationOutOfRange ValidationStatus = "out_of_range"
	ValidationError      ValidationStatus = "error"
)

// IsValidValidationStatus reports whether v is one of the known reading statuses.
func IsValidValidationStatus(v string) bool {
	switch ValidationStatus(v) {
	case ValidationValid, ValidationOutOfRange, ValidationError:
		return true
	}
	return false
}

// Reading represents one timestamped measurement from a sensor. The node
// reference is denormalized from the sensor for query convenience.
type Reading struct {
	BaseModel
	SensorID         uint             `gorm:"not null;index" json:"sensor_id"`
	NodeID           uint             `gorm:"not null;index" json:"node_id"`
	Value            float64          `gorm:"not null" json:"value"`
	Timestamp        time.Time        `gorm:"not null;index" json:"timestamp"` // event time, distinct from CreatedAt
	ValidationStatus ValidationStatus `gorm:"type:varchar(20);default:'valid'" json:"validation_status"`

	// Relations
	Sensor *Sensor `gorm:"foreignKey:SensorID" json:"sensor,omitempty"`
	Node   *Node   `gorm:"foreignKey:NodeID" json:"node,omitempty"`
	Alerts []Alert `gorm:"foreignKey:ReadingID" json:"alerts,omitempty"`
}
