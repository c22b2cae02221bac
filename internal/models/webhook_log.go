package models

import (
	"time"

	"gorm.io/datatypes"
)

// MidtransWebhookLog mencatat SEMUA notifikasi masuk dari Midtrans, valid atau tidak,
// ketemu booking-nya atau tidak. Append-only, untuk audit & debugging replay.
type MidtransWebhookLog struct {
	ID                uint64         `gorm:"primaryKey" json:"id"`
	OrderID           string         `gorm:"size:64;index" json:"order_id"`
	BookingID         *uint64        `gorm:"index" json:"booking_id,omitempty"` // null kalau tidak ketemu
	PaymentStatus     string         `gorm:"size:15" json:"payment_status"`     // hasil mapping internal
	TransactionStatus string         `gorm:"size:30" json:"transaction_status"` // status mentah Midtrans
	SignatureValid    bool           `gorm:"not null;default:false" json:"signature_valid"`
	Payload           datatypes.JSON `json:"payload"`
	CreatedAt         time.Time      `json:"created_at"`
}

func (MidtransWebhookLog) TableName() string {
	return "midtrans_webhook_logs"
}
