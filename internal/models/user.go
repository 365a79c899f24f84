package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a PawMe profile. Points and referral_count are only ever mutated
// through single-statement atomic updates (see services.ReferralService).
type User struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name            string         `gorm:"size:120" json:"name"`
	Password        string         `gorm:"not null" json:"-"`
	Role            string         `gorm:"size:20;default:'user'" json:"role"`
	ReferralCode    string         `gorm:"size:16;not null;uniqueIndex" json:"referral_code"`
	ReferredBy      *string        `gorm:"size:16;index" json:"referred_by,omitempty"`
	Points          int            `gorm:"not null;default:0" json:"points"`
	ReferralCount   int            `gorm:"not null;default:0" json:"referral_count"`
	IsVip           bool           `gorm:"not null;default:false" json:"is_vip"`
	VipPaidAt       *time.Time     `json:"vip_paid_at,omitempty"`
	MarketingOptIn  bool           `gorm:"not null;default:true" json:"marketing_opt_in"`
	Theme           string         `gorm:"size:40;default:'light'" json:"theme"`
	EmailVerifiedAt *time.Time     `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Rewards []Reward `gorm:"foreignKey:UserID" json:"rewards,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
