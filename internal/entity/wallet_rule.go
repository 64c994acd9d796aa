package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RuleSchedule string

const (
	RuleScheduleDaily   RuleSchedule = "daily"
	RuleScheduleWeekly  RuleSchedule = "weekly"
	RuleScheduleMonthly RuleSchedule = "monthly"
)

// Next returns the run time one cadence period after prev. Advancing from the
// previous scheduled time rather than from the clock keeps the cadence
// drift-free no matter how late the scheduler fires.
func (s RuleSchedule) Next(prev time.Time) time.Time {
	switch s {
	case RuleScheduleDaily:
		return prev.AddDate(0, 0, 1)
	case RuleScheduleWeekly:
		return prev.AddDate(0, 0, 7)
	default:
		return prev.AddDate(0, 1, 0)
	}
}

// WalletRule is a recurring credit definition. Rules are disabled, never
// deleted.
type WalletRule struct {
	ID          uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      string       `gorm:"type:varchar(64);not null;index" json:"user_id"`
	Email       string       `gorm:"type:varchar(255);not null" json:"email"`
	Name        string       `gorm:"type:varchar(255);not null" json:"name"`
	Amount      int64        `gorm:"not null;check:amount > 0" json:"amount"`
	Schedule    RuleSchedule `gorm:"type:varchar(10);not null;check:schedule IN ('daily','weekly','monthly')" json:"schedule"`
	Description string       `gorm:"type:text" json:"description"`
	Active      bool         `gorm:"not null;default:true;index:idx_wallet_rules_due,priority:1" json:"active"`
	NextRunAt   time.Time    `gorm:"not null;index:idx_wallet_rules_due,priority:2" json:"next_run_at"`
	CreatedBy   string       `gorm:"type:varchar(64)" json:"created_by,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (r *WalletRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (WalletRule) TableName() string {
	return "wallet_rules"
}
