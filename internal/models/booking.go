package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BookingType string

const (
	BookingRegular BookingType = "REGULAR"
	BookingInstant BookingType = "INSTANT"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingPaid      BookingStatus = "PAID"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Status pembayaran internal (hasil mapping dari transaction_status Midtrans)
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentExpired   PaymentStatus = "EXPIRED"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentFailed    PaymentStatus = "FAILED"
)

type RefundStatus string

const (
	RefundNone      RefundStatus = ""
	RefundPending   RefundStatus = "PENDING"
	RefundCompleted RefundStatus = "COMPLETED"
)

// Booking adalah satu pembelian paket sesi terapi oleh pasien.
// Alamat layanan dikunci di sini (bukan ambil dari profil) biar harga & lokasi
// tidak berubah setelah dibayar.
type Booking struct {
	ID   uint64 `gorm:"primaryKey" json:"id"`
	UUID string `gorm:"type:char(36);uniqueIndex;not null" json:"uuid"`

	PatientID   uint64  `gorm:"index;not null" json:"patient_id"`
	TherapistID uint64  `gorm:"index;not null" json:"therapist_id"`
	PackageID   *uint64 `json:"package_id,omitempty"`

	ServiceAddress string  `gorm:"size:255" json:"service_address"`
	ServiceLat     float64 `gorm:"type:decimal(11,8)" json:"service_lat"`
	ServiceLng     float64 `gorm:"type:decimal(11,8)" json:"service_lng"`

	TotalPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
	AdminFeeAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"admin_fee_amount"`
	TherapistNetTotal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"therapist_net_total"`

	Type   BookingType   `gorm:"size:10;not null;default:REGULAR" json:"type"`
	Status BookingStatus `gorm:"size:15;index;not null;default:PENDING" json:"status"`

	// Persetujuan pasien saat checkout, wajib true semua
	ConsentService           bool `gorm:"not null" json:"consent_service"`
	ConsentDataSharing       bool `gorm:"not null" json:"consent_data_sharing"`
	ConsentTerms             bool `gorm:"not null" json:"consent_terms"`
	ConsentMedicalDisclaimer bool `gorm:"not null" json:"consent_medical_disclaimer"`

	PaymentProvider    string         `gorm:"size:20" json:"payment_provider"`
	PaymentOrderID     string         `gorm:"size:64;index" json:"payment_order_id"`
	PaymentStatus      PaymentStatus  `gorm:"size:15" json:"payment_status"`
	PaymentInstruction datatypes.JSON `json:"payment_instruction,omitempty"`
	PaymentExpiredAt   *time.Time     `json:"payment_expired_at,omitempty"`
	GatewayPayload     datatypes.JSON `json:"-"` // payload mentah terakhir dari gateway

	TherapistRespondBy  *time.Time `json:"therapist_respond_by,omitempty"`
	TherapistAcceptedAt *time.Time `json:"therapist_accepted_at,omitempty"`
	ChatLockedAt        *time.Time `json:"chat_locked_at,omitempty"`
	ChatClosedAt        *time.Time `json:"-"`

	RefundStatus    RefundStatus `gorm:"size:15" json:"refund_status,omitempty"`
	RefundReference string       `gorm:"size:64" json:"refund_reference,omitempty"`
	RefundNote      string       `gorm:"size:255" json:"refund_note,omitempty"`
	RefundedAt      *time.Time   `json:"refunded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sessions []Session `gorm:"foreignKey:BookingID" json:"sessions,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Order ID Midtrans dibentuk dari UUID booking dengan prefix tetap.
// Ini kontrak eksplisit: BuildOrderID dan ParseOrderID harus selalu sepasang,
// jangan ada yang nge-parse format ini manual di tempat lain.
const orderIDPrefix = "FISIO-"

func BuildOrderID(bookingUUID string) string {
	return orderIDPrefix + bookingUUID
}

// ParseOrderID mengembalikan UUID booking dari order id Midtrans.
// false kalau formatnya bukan punya kita.
func ParseOrderID(orderID string) (string, bool) {
	if !strings.HasPrefix(orderID, orderIDPrefix) {
		return "", false
	}
	raw := strings.TrimPrefix(orderID, orderIDPrefix)
	if _, err := uuid.Parse(raw); err != nil {
		return "", false
	}
	return raw, true
}
