package services

import (
	"fmt"
	"time"

	"github.com/pawme/pawme-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Metric column names for MetricsService.Bump.
const (
	MetricSignups     = "signups"
	MetricReferrals   = "referrals"
	MetricRedemptions = "redemptions"
	MetricEmailsSent  = "emails_sent"
)

// MetricsService keeps one counters row per UTC date. Creating the row twice
// for the same date is a no-op; counter bumps are single-statement atomic
// increments.
type MetricsService struct {
	db *gorm.DB
}

func NewMetricsService(db *gorm.DB) *MetricsService {
	return &MetricsService{db: db}
}

// Today returns the current UTC date key.
func Today() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Bump increments one counter on today's row, creating the row if needed.
func (s *MetricsService) Bump(column string) error {
	return s.BumpBy(column, 1)
}

func (s *MetricsService) BumpBy(column string, delta int) error {
	switch column {
	case MetricSignups, MetricReferrals, MetricRedemptions, MetricEmailsSent:
	default:
		return fmt.Errorf("unknown metric column %q", column)
	}
	if delta == 0 {
		return nil
	}

	date := Today()
	row := models.DailyMetric{Date: date}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to ensure daily metric row: %w", err)
	}

	return s.db.Model(&models.DailyMetric{}).
		Where("date = ?", date).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// Range returns metric rows for the inclusive [from, to] date range.
func (s *MetricsService) Range(from, to string) ([]models.DailyMetric, error) {
	var rows []models.DailyMetric
	if err := s.db.Where("date >= ? AND date <= ?", from, to).
		Order("date asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}
	return rows, nil
}
