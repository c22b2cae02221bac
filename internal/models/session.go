package models

import "time"

type SessionStatus string

const (
	SessionPendingScheduling SessionStatus = "PENDING_SCHEDULING"
	SessionScheduled         SessionStatus = "SCHEDULED"
	SessionCompleted         SessionStatus = "COMPLETED"
	SessionForfeited         SessionStatus = "FORFEITED"
	SessionExpired           SessionStatus = "EXPIRED"
)

// IsTerminal: sesi sudah tidak bisa transisi lagi
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionForfeited || s == SessionExpired
}

// Session adalah satu kunjungan 90 menit, bagian dari Booking (urut SequenceNo 1..N).
// TherapistID sengaja didenormalisasi dari Booking biar query cek slot
// tidak perlu join ke bookings.
type Session struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	BookingID   uint64 `gorm:"index;not null" json:"booking_id"`
	TherapistID uint64 `gorm:"index;not null" json:"therapist_id"`
	SequenceNo  int    `gorm:"not null" json:"sequence_no"`

	ScheduledAt *time.Time    `gorm:"index" json:"scheduled_at,omitempty"`
	Status      SessionStatus `gorm:"size:20;index;not null;default:PENDING_SCHEDULING" json:"status"`
	Notes       string        `gorm:"type:text" json:"notes,omitempty"`

	// Flag idempotensi payout: sekali true, payout untuk sesi ini tidak boleh jalan lagi
	IsPayoutDistributed bool `gorm:"not null;default:false" json:"is_payout_distributed"`

	CancelReason string     `gorm:"size:255" json:"cancel_reason,omitempty"`
	CancelledBy  string     `gorm:"size:20" json:"cancelled_by,omitempty"` // PATIENT / THERAPIST / SYSTEM
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Session) TableName() string {
	return "sessions"
}
