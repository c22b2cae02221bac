package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TherapyPackage adalah paket sesi yang bisa dibeli pasien sekaligus
// (misal: paket 4x kunjungan fisioterapi). CommissionRate dalam persen.
type TherapyPackage struct {
	ID             uint64          `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Description    string          `gorm:"type:text" json:"description"`
	SessionCount   int             `gorm:"not null;default:1" json:"session_count"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:30" json:"commission_rate"`
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (TherapyPackage) TableName() string {
	return "therapy_packages"
}
