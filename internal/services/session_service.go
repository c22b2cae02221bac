package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/internal/repository"
)

const (
	// Batas cancel aman: lebih dari 1 jam sebelum jadwal, kuota sesi balik.
	// Perbandingannya strict > — pas 60 menit dihitung telat (FORFEITED).
	SafeCancelWindow = time.Hour

	// Sesi PENDING_SCHEDULING hangus kalau booking-nya sudah lebih tua dari ini
	PendingSessionTTL = 30 * 24 * time.Hour
)

type SessionService struct {
	txm      repository.TxManager
	bookings repository.BookingRepository
	sessions repository.SessionRepository
	guard    *SlotGuard
	notifier Notifier
	chat     ChatClient
	payouts  PayoutEnqueuer
	clock    Clock
}

func NewSessionService(
	txm repository.TxManager,
	bookings repository.BookingRepository,
	sessions repository.SessionRepository,
	guard *SlotGuard,
	notifier Notifier,
	chat ChatClient,
	payouts PayoutEnqueuer,
	clock Clock,
) *SessionService {
	return &SessionService{
		txm:      txm,
		bookings: bookings,
		sessions: sessions,
		guard:    guard,
		notifier: notifier,
		chat:     chat,
		payouts:  payouts,
		clock:    clock,
	}
}

// Schedule: pasien mengatur jadwal sesi yang masih PENDING_SCHEDULING.
// Jalur ini lewat slot guard lagi persis seperti booking baru.
func (s *SessionService) Schedule(patientID, sessionID uint64, scheduledAt time.Time) (*models.Session, error) {
	sess, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, errNotFound("sesi tidak ditemukan")
	}
	booking, err := s.bookings.FindByID(sess.BookingID)
	if err != nil {
		return nil, errNotFound("booking tidak ditemukan")
	}
	if booking.PatientID != patientID {
		return nil, errNotFound("sesi tidak ditemukan")
	}
	if booking.Status == models.BookingCancelled {
		return nil, errState("booking sudah dibatalkan")
	}
	if sess.Status != models.SessionPendingScheduling {
		return nil, errState("sesi ini sudah terjadwal atau sudah selesai")
	}
	// Untuk sesi lanjutan aturan lead time instant tidak berlaku, cukup alignment
	if err := s.guard.ValidateSlot(scheduledAt, models.BookingRegular, s.clock.Now()); err != nil {
		return nil, err
	}

	err = s.txm.DoSerializable(func(tx *gorm.DB) error {
		if err := s.guard.Reserve(tx, sess.TherapistID, scheduledAt); err != nil {
			return err
		}
		sess.ScheduledAt = &scheduledAt
		sess.Status = models.SessionScheduled
		return s.sessions.WithTx(tx).Save(sess)
	})
	if err != nil {
		if isSerializationFailure(err) {
			return nil, errConflict("slot keburu diambil, silakan pilih jam lain")
		}
		return nil, err
	}

	s.notifier.Notify(booking.TherapistID,
		"Sesi Dijadwalkan 📅",
		"Pasien mengatur jadwal sesi berikutnya. Cek kalendermu ya.",
		map[string]string{"session_id": fmt.Sprintf("%d", sess.ID), "type": "session_scheduled"})

	return sess, nil
}

// Cancel: pasien membatalkan sesi yang sudah terjadwal.
// > 1 jam sebelum mulai: sesi balik ke PENDING_SCHEDULING, kuota aman.
// <= 1 jam: FORFEITED, terapis tetap dapat payout (kompensasi telat cancel).
func (s *SessionService) Cancel(patientID, sessionID uint64, reason string) (*models.Session, error) {
	sess, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, errNotFound("sesi tidak ditemukan")
	}
	booking, err := s.bookings.FindByID(sess.BookingID)
	if err != nil {
		return nil, errNotFound("booking tidak ditemukan")
	}
	if booking.PatientID != patientID {
		return nil, errNotFound("sesi tidak ditemukan")
	}
	if sess.Status != models.SessionScheduled || sess.ScheduledAt == nil {
		return nil, errState("hanya sesi terjadwal yang bisa dibatalkan")
	}

	now := s.clock.Now()
	forfeited := sess.ScheduledAt.Sub(now) <= SafeCancelWindow

	err = s.txm.Do(func(tx *gorm.DB) error {
		sess.CancelReason = reason
		sess.CancelledBy = "PATIENT"
		sess.CancelledAt = &now
		if forfeited {
			sess.Status = models.SessionForfeited
		} else {
			sess.Status = models.SessionPendingScheduling
			sess.ScheduledAt = nil
		}
		return s.sessions.WithTx(tx).Save(sess)
	})
	if err != nil {
		return nil, err
	}

	if forfeited {
		// Payout kompensasi jalan lewat antrian, bukan inline
		s.payouts.Enqueue(sess.ID)
		s.refreshChatLock(booking.ID)
		s.notifier.Notify(booking.TherapistID,
			"Sesi Dibatalkan Mendadak",
			"Pasien membatalkan kurang dari 1 jam sebelum mulai. Kompensasi masuk ke dompetmu.",
			map[string]string{"session_id": fmt.Sprintf("%d", sess.ID), "type": "session_forfeited"})
	} else {
		s.notifier.Notify(booking.TherapistID,
			"Sesi Dibatalkan",
			"Pasien membatalkan sesi. Jadwalmu di jam itu kosong lagi.",
			map[string]string{"session_id": fmt.Sprintf("%d", sess.ID), "type": "session_cancelled"})
	}

	return sess, nil
}

// Complete: terapis menandai sesi selesai setelah kunjungan
func (s *SessionService) Complete(therapistID, sessionID uint64, notes string) (*models.Session, error) {
	sess, err := s.sessions.FindByID(sessionID)
	if err != nil {
		return nil, errNotFound("sesi tidak ditemukan")
	}
	if sess.TherapistID != therapistID {
		return nil, errNotFound("sesi tidak ditemukan")
	}
	booking, err := s.bookings.FindByID(sess.BookingID)
	if err != nil {
		return nil, errNotFound("booking tidak ditemukan")
	}
	// Invariant: booking CANCELLED berarti tidak ada sesi yang boleh COMPLETED lagi
	if booking.Status == models.BookingCancelled {
		return nil, errState("booking sudah dibatalkan")
	}
	if sess.Status != models.SessionScheduled {
		return nil, errState("hanya sesi terjadwal yang bisa diselesaikan")
	}

	err = s.txm.Do(func(tx *gorm.DB) error {
		sess.Status = models.SessionCompleted
		sess.Notes = notes
		return s.sessions.WithTx(tx).Save(sess)
	})
	if err != nil {
		return nil, err
	}

	s.payouts.Enqueue(sess.ID)
	s.refreshChatLock(booking.ID)
	s.notifier.Notify(booking.PatientID,
		"Sesi Selesai 🙌",
		"Sesi terapimu sudah selesai. Semoga lekas pulih!",
		map[string]string{"session_id": fmt.Sprintf("%d", sess.ID), "type": "session_completed"})

	return sess, nil
}

// ExpireSweep menghanguskan sesi PENDING_SCHEDULING yang booking-nya
// sudah lebih dari 30 hari
func (s *SessionService) ExpireSweep() error {
	cutoff := s.clock.Now().Add(-PendingSessionTTL)
	var n int64
	err := s.txm.Do(func(tx *gorm.DB) error {
		var err error
		n, err = s.sessions.WithTx(tx).ExpireStale(cutoff)
		return err
	})
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("[Sweep] %d sesi pending dihanguskan (lewat 30 hari)", n)
	}
	return nil
}

// AutoCompleteSweep: booking PAID yang semua sesinya sudah terminal
// (minimal satu sesi) di-set COMPLETED
func (s *SessionService) AutoCompleteSweep() error {
	candidates, err := s.bookings.FindPaidAllTerminal()
	if err != nil {
		return err
	}
	for i := range candidates {
		b := &candidates[i]
		err := s.txm.Do(func(tx *gorm.DB) error {
			b.Status = models.BookingCompleted
			return s.bookings.WithTx(tx).Save(b)
		})
		if err != nil {
			log.Printf("[Sweep] gagal auto-complete booking %d: %v", b.ID, err)
			continue
		}
		s.refreshChatLock(b.ID)
		log.Printf("[Sweep] booking %d auto-complete", b.ID)
	}
	return nil
}

// ChatLockSweep menutup room chat yang sudah lewat jadwal kuncinya
func (s *SessionService) ChatLockSweep() error {
	due, err := s.bookings.FindChatLockDue(s.clock.Now())
	if err != nil {
		return err
	}
	for i := range due {
		b := &due[i]
		if err := s.chat.CloseRoom(b.ID); err != nil {
			log.Printf("[Sweep] gagal tutup chat booking %d: %v", b.ID, err)
			continue
		}
		now := s.clock.Now()
		err := s.txm.Do(func(tx *gorm.DB) error {
			b.ChatClosedAt = &now
			return s.bookings.WithTx(tx).Save(b)
		})
		if err != nil {
			log.Printf("[Sweep] gagal tandai chat closed booking %d: %v", b.ID, err)
		}
	}
	return nil
}

// refreshChatLock: kalau semua sesi booking sudah terminal, jadwalkan kunci chat
// 24 jam setelah scheduled_at sesi terminal paling akhir (atau sekarang kalau
// tidak ada yang punya jadwal)
func (s *SessionService) refreshChatLock(bookingID uint64) {
	sessions, err := s.sessions.ListByBooking(bookingID)
	if err != nil || len(sessions) == 0 {
		return
	}
	var latest *time.Time
	for i := range sessions {
		if !sessions[i].Status.IsTerminal() {
			return
		}
		if t := sessions[i].ScheduledAt; t != nil && (latest == nil || t.After(*latest)) {
			latest = t
		}
	}

	lockAt := s.clock.Now()
	if latest != nil {
		lockAt = latest.Add(ChatLockDelay)
	}

	err = s.txm.Do(func(tx *gorm.DB) error {
		booking, err := s.bookings.WithTx(tx).FindByID(bookingID)
		if err != nil {
			return err
		}
		booking.ChatLockedAt = &lockAt
		return s.bookings.WithTx(tx).Save(booking)
	})
	if err != nil {
		log.Printf("[ChatLock] gagal update jadwal kunci chat booking %d: %v", bookingID, err)
	}
}
