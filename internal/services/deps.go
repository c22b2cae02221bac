package services

import (
	"time"

	"fisiocare-backend/internal/models"
)

// Notifier mengirim push notification ke satu user. Best-effort: kegagalan
// kirim tidak boleh menggagalkan operasi inti, jadi tidak ada return error.
// Implementasi tidak boleh dipanggil di dalam transaksi DB.
type Notifier interface {
	Notify(userID uint64, title, body string, data map[string]string)
}

// ChatClient mengelola room chat pasien-terapis. Side channel best-effort,
// tidak transaksional dengan state booking.
type ChatClient interface {
	OpenRoom(bookingID uint64, participantIDs []uint64) error
	CloseRoom(bookingID uint64) error
}

// ChargeResult adalah hasil charge keluar ke gateway
type ChargeResult struct {
	Provider    string
	Token       string
	RedirectURL string
	Instruction []byte // payload instruksi bayar mentah, disimpan apa adanya
	ExpiredAt   *time.Time
}

// PaymentGateway adalah sisi outbound gateway pembayaran (Midtrans Snap)
type PaymentGateway interface {
	CreateCharge(b *models.Booking, customer *models.User) (*ChargeResult, error)
}

// PayoutEnqueuer menjadwalkan payout sesi lewat antrian worker.
// Delivery-nya at-least-once, aman karena payout idempoten.
type PayoutEnqueuer interface {
	Enqueue(sessionID uint64)
}

// Clock di-inject biar aturan deadline/boundary bisa di-test deterministik
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewClock() Clock { return realClock{} }
