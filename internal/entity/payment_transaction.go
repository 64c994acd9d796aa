package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Terminal reports whether the status may no longer change. A conflicting
// terminal update from a later webhook is a reconciliation case, not a write.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// PaymentTransaction is one payment attempt, keyed by the merchant-generated
// reference. GatewayReference is the gateway's own transaction id.
type PaymentTransaction struct {
	ID               uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Reference        string        `gorm:"type:varchar(128);not null;uniqueIndex" json:"reference"`
	Gateway          string        `gorm:"type:varchar(32);not null" json:"gateway"`
	Category         string        `gorm:"type:varchar(64)" json:"category"`
	Amount           int64         `gorm:"not null;check:amount > 0" json:"amount"`
	Status           PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending','completed','failed');index:idx_payment_transactions_status_created,priority:1" json:"status"`
	Email            string        `gorm:"type:varchar(255);not null" json:"email"`
	Name             string        `gorm:"type:varchar(255)" json:"name"`
	Phone            string        `gorm:"type:varchar(32)" json:"phone,omitempty"`
	Details          string        `gorm:"type:text" json:"details,omitempty"`
	GatewayReference string        `gorm:"type:varchar(128)" json:"gateway_reference,omitempty"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_payment_transactions_status_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (t *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
