package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/osmelmr/nodosiot-server/internal/domain/models"
	"github.com/osmelmr/nodosiot-server/internal/infrastructure/config"
)

// SummaryFilters narrows the reading set a summary aggregates over. Zero
// values mean "no filter"; dates are YYYY-MM-DD strings and unparseable
// values are dropped, widening the result set like the alert filters do.
type SummaryFilters struct {
	NodeID    uint
	SensorID  uint
	StartDate string
	EndDate   string
}

// DailySummary carries avg/max/min of the matched readings. The pointers
// are nil when no rows match, so clients can tell "no data" apart from a
// zero measurement.
type DailySummary struct {
	AvgValue *float64 `json:"avg_value"`
	MaxValue *float64 `json:"max_value"`
	MinValue *float64 `json:"min_value"`
}

// InterfaceAnalyticsService defines the analytics service interface
type InterfaceAnalyticsService interface {
	GetDailySummary(filters SummaryFilters) (*DailySummary, error)
}

// AnalyticsService computes reading aggregations
type AnalyticsService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB, cfg *config.Config) InterfaceAnalyticsService {
	return &AnalyticsService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetDailySummary computes avg/max/min over the non-deleted readings
// matching the filters. An empty match yields null aggregates, never zeros.
func (s *AnalyticsService) GetDailySummary(filters SummaryFilters) (*DailySummary, error) {
	query := s.DB.Model(&models.Reading{}).
		Select("AVG(value) AS avg_value, MAX(value) AS max_value, MIN(value) AS min_value").
		Where("is_deleted = ?", false)

	if filters.NodeID != 0 {
		query = query.Where("node_id = ?", filters.NodeID)
	}
	if filters.SensorID != 0 {
		query = query.Where("sensor_id = ?", filters.SensorID)
	}
	if filters.StartDate != "" {
		if t, err := time.Parse("2006-01-02", filters.StartDate); err == nil {
			query = query.Where("timestamp >= ?", t)
		}
	}
	if filters.EndDate != "" {
		if t, err := time.Parse("2006-01-02", filters.EndDate); err == nil {
			// end date is inclusive of the whole day
			query = query.Where("timestamp < ?", t.AddDate(0, 0, 1))
		}
	}

	var row struct {
		AvgValue *float64
		MaxValue *float64
		MinValue *float64
	}
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	return &DailySummary{
		AvgValue: row.AvgValue,
		MaxValue: row.MaxValue,
		MinValue: row.MinValue,
	}, nil
}
