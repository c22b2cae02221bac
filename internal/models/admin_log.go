package models

import "time"

// Aksi admin yang dicatat di admin_action_logs
const (
	AdminActionRefund       = "REFUND_COMPLETED"
	AdminActionSwap         = "THERAPIST_SWAPPED"
	AdminActionManualPayout = "MANUAL_PAYOUT"
	AdminActionTopup        = "WALLET_TOPUP"
	AdminActionWithdraw     = "WALLET_WITHDRAW"
)

// AdminActionLog mencatat setiap mutasi manual oleh admin (refund, tukar terapis,
// payout manual, topup/withdraw dompet). Append-only.
type AdminActionLog struct {
	ID         uint64    `gorm:"primaryKey" json:"id"`
	AdminID    uint64    `gorm:"index;not null" json:"admin_id"`
	Action     string    `gorm:"size:30;not null;index" json:"action"`
	TargetType string    `gorm:"size:20;not null" json:"target_type"` // BOOKING / SESSION / WALLET
	TargetID   uint64    `gorm:"not null" json:"target_id"`
	Note       string    `gorm:"size:255" json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AdminActionLog) TableName() string {
	return "admin_action_logs"
}
