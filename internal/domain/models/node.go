package models

// Node represents a physical IoT deployment site (Arduino / gateway) hosting sensors
type Node struct {
	BaseModel
	Name             string   `gorm:"type:varchar(100);not null" json:"name"`
	Description      string   `gorm:"type:text" json:"description"`
	Location         string   `gorm:"type:varchar(255)" json:"location"`
	Latitude         *float64 `gorm:"type:decimal(9,6)" json:"latitude,omitempty"`
	Longitude        *float64 `gorm:"type:decimal(9,6)" json:"longitude,omitempty"`
	SamplingInterval int      `gorm:"default:10" json:"sampling_interval"` // seconds
	UserID           uint     `gorm:"index" json:"user_id"`                // owning user

	// Relations
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Sensors  []Sensor  `gorm:"foreignKey:NodeID" json:"sensors,omitempty"`
	Readings []Reading `gorm:"foreignKey:NodeID" json:"readings,omitempty"`
	Alerts   []Alert   `gorm:"foreignKey:NodeID" json:"alerts,omitempty"`
}
