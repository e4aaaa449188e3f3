package models

// AlertStatus represents the handling state of an alert
type AlertStatus string

const (
	AlertStatusPending  AlertStatus = "pending"
	AlertStatusAttended AlertStatus = "attended"
)

// IsValidAlertStatus reports whether v is one of the known alert statuses.
func IsValidAlertStatus(v string) bool {
	switch AlertStatus(v) {
	case AlertStatusPending, AlertStatusAttended:
		return true
	}
	return false
}

// AlertType tags the threshold breach that raised an alert. The vocabulary is
// per-metric: "high_<sensor type>" for a max_value breach and
// "low_<sensor type>" for a min_value breach.
type AlertType string

// HighBreachType returns the alert type for a max_value breach on a sensor.
func HighBreachType(t SensorType) AlertType {
	return AlertType("high_" + string(t))
}

// LowBreachType returns the alert type for a min_value breach on a sensor.
func LowBreachType(t SensorType) AlertType {
	return AlertType("low_" + string(t))
}

// IsValidAlertType reports whether v is a recognized alert type.
func IsValidAlertType(v string) bool {
	for _, t := range []SensorType{
		SensorTypeTemperature, SensorTypeHumidity, SensorTypePressure,
		SensorTypeLuminosity, SensorTypeWind,
	} {
		if AlertType(v) == HighBreachType(t) || AlertType(v) == LowBreachType(t) {
			return true
		}
	}
	return false
}

// Alert represents a derived record flagging that a reading breached one of
// its sensor's thresholds. DetectedValue is an immutable snapshot of the
// triggering reading value.
type Alert struct {
	BaseModel
	SensorID      uint        `gorm:"not null;index" json:"sensor_id"`
	NodeID        uint        `gorm:"not null;index" json:"node_id"`
	ReadingID     uint        `gorm:"not null;index" json:"reading_id"`
	AlertType     AlertType   `gorm:"type:varchar(30);not null" json:"alert_type"`
	DetectedValue float64     `gorm:"not null" json:"detected_value"`
	Status        AlertStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`

	// Relations
	Sensor  *Sensor  `gorm:"foreignKey:SensorID" json:"sensor,omitempty"`
	Node    *Node    `gorm:"foreignKey:NodeID" json:"node,omitempty"`
	Reading *Reading `gorm:"foreignKey:ReadingID" json:"reading,omitempty"`
}
