package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerEntryType string

const (
	LedgerEntryTypeCredit LedgerEntryType = "credit"
	LedgerEntryTypeDebit  LedgerEntryType = "debit"
)

type LedgerEntryStatus string

const (
	LedgerEntryStatusCompleted LedgerEntryStatus = "completed"
	LedgerEntryStatusFailed    LedgerEntryStatus = "failed"
)

// Ledger entry sources. Gateway entries carry the gateway name directly.
const (
	LedgerSourcePaystack string = "paystack"
	LedgerSourceMonnify  string = "monnify"
	LedgerSourceManual   string = "manual"
	LedgerSourceAdmin    string = "admin"
	LedgerSourceAuto     string = "auto"
)

// LedgerEntry is an immutable, append-only record of one wallet movement.
// Reference is the idempotency key: the unique index rejects a second write
// for the same reference, which is how replayed webhooks and overlapping
// scheduler runs collapse into a single credit.
type LedgerEntry struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Reference    string            `gorm:"type:varchar(128);not null;uniqueIndex" json:"reference"`
	UserID       string            `gorm:"type:varchar(64);not null;index:idx_ledger_entries_user_created,priority:1" json:"user_id"`
	Type         LedgerEntryType   `gorm:"type:varchar(10);not null;check:type IN ('credit','debit')" json:"type"`
	Source       string            `gorm:"type:varchar(32);not null" json:"source"`
	Amount       int64             `gorm:"not null;check:amount > 0" json:"amount"`
	Status       LedgerEntryStatus `gorm:"type:varchar(20);not null;default:'completed';check:status IN ('completed','failed')" json:"status"`
	Description  string            `gorm:"type:text" json:"description"`
	Metadata     string            `gorm:"type:text" json:"metadata,omitempty"`
	BalanceAfter int64             `gorm:"not null" json:"balance_after"`
	CreatedBy    string            `gorm:"type:varchar(64)" json:"created_by,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_ledger_entries_user_created,priority:2,sort:desc" json:"created_at"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
