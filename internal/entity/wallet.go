package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Wallet is the stored-value account for one platform user. Balance is held
// in minor currency units (kobo) and is only ever written by the ledger
// usecase alongside a ledger entry.
type Wallet struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"user_id"`
	Email     string    `gorm:"type:varchar(255);not null" json:"email"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Balance   int64     `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	Version   int       `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

func (Wallet) TableName() string {
	return "wallets"
}
