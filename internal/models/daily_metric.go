package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyMetric is one row per UTC date. Creation is idempotent (conflict on
// the date key is a no-op); counters are bumped atomically.
type DailyMetric struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Date        string    `gorm:"size:10;not null;uniqueIndex" json:"date"`
	Signups     int       `gorm:"not null;default:0" json:"signups"`
	Referrals   int       `gorm:"not null;default:0" json:"referrals"`
	Redemptions int       `gorm:"not null;default:0" json:"redemptions"`
	EmailsSent  int       `gorm:"not null;default:0" json:"emails_sent"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (m *DailyMetric) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
