package services

import (
	"time"

	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/internal/repository"
)

const (
	// InstantLeadTime: booking INSTANT minimal 60 menit dari sekarang
	InstantLeadTime = 60 * time.Minute
)

// SlotGuard menjaga tidak ada terapis yang double-booked.
// Validasi murah (alignment, lead time) jalan duluan di luar transaksi;
// cek overlap + insert jalan di dalam SATU transaksi serializable.
type SlotGuard struct {
	sessions repository.SessionRepository
}

func NewSlotGuard(sessions repository.SessionRepository) *SlotGuard {
	return &SlotGuard{sessions: sessions}
}

// ValidateSlot mengecek aturan slot yang tidak butuh database:
// menit harus :00 atau :30, dan untuk INSTANT jaraknya > 60 menit dari sekarang.
func (g *SlotGuard) ValidateSlot(scheduledAt time.Time, bookingType models.BookingType, now time.Time) error {
	if scheduledAt.Minute() != 0 && scheduledAt.Minute() != 30 {
		return errValidation("jadwal harus di menit :00 atau :30")
	}
	if scheduledAt.Second() != 0 || scheduledAt.Nanosecond() != 0 {
		return errValidation("jadwal harus di menit :00 atau :30")
	}
	if !scheduledAt.After(now) {
		return errValidation("jadwal harus di masa depan")
	}
	if bookingType == models.BookingInstant && scheduledAt.Sub(now) <= InstantLeadTime {
		return errValidation("booking instant minimal 60 menit dari sekarang")
	}
	return nil
}

// Reserve mengunci semua sesi kandidat bentrok milik terapis lalu menghitungnya.
// Ada satu saja yang overlap = Conflict, kita fail fast — bukan geser diam-diam
// ke slot lain. Deteksi serialization failure dari database tetap jadi backstop
// kalau dua transaksi lolos sampai insert.
func (g *SlotGuard) Reserve(tx *gorm.DB, therapistID uint64, scheduledAt time.Time) error {
	n, err := g.sessions.WithTx(tx).CountOverlappingForUpdate(therapistID, scheduledAt)
	if err != nil {
		return err
	}
	if n > 0 {
		return errConflict("jadwal terapis bentrok di jam tersebut")
	}
	return nil
}
