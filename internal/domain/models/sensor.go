package models

// SensorType represents the physical magnitude a sensor measures
type SensorType string

const (
	SensorTypeTemperature SensorType = "temperature"
	SensorTypeHumidity    SensorType = "humidity"
	SensorTypePressure    SensorType = "pressure"
	SensorTypeLuminosity  SensorType = "luminosity"
	SensorTypeWind        SensorType = "wind"
)

// IsValidSensorType reports whether v is one of the known sensor types.
func IsValidSensorType(v string) bool {
	switch SensorType(v) {
	case SensorTypeTemperature, SensorTypeHumidity, SensorTypePressure,
		SensorTypeLuminosity, SensorTypeWind:
		return true
	}
	return false
}

// Sensor represents a physical measurement instrument attached to a Node.
// The (node, name) pair is unique. MinValue/MaxValue are the optional
// validation thresholds evaluated on every ingested reading.
type Sensor struct {
	BaseModel
	NodeID     uint       `gorm:"not null;index;uniqueIndex:idx_node_sensor_name,priority:1" json:"node_id"`
	Name       string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_node_sensor_name,priority:2" json:"name"`
	SensorType SensorType `gorm:"type:varchar(20);not null" json:"sensor_type"`
	Model      string     `gorm:"type:varchar(50)" json:"model"`
	Unit       string     `gorm:"type:varchar(10)" json:"unit"`
	MinValue   *float64   `json:"min_value,omitempty"`
	MaxValue   *float64   `json:"max_value,omitempty"`

	// Relations
	Node     *Node     `gorm:"foreignKey:NodeID" json:"node,omitempty"`
	Readings []Reading `gorm:"foreignKey:SensorID" json:"readings,omitempty"`
	Alerts   []Alert   `gorm:"foreignKey:SensorID" json:"alerts,omitempty"`
}
