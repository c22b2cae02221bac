package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/internal/repository"
)

const (
	// Deadline respon terapis setelah pembayaran dikonfirmasi.
	// Catatan: dulu sempat ada helper lain yang bilang 30 menit untuk REGULAR,
	// sudah diseragamkan ke 60 menit — satu konstanta, dipakai di semua jalur.
	RespondWindowInstant = 5 * time.Minute
	RespondWindowRegular = 60 * time.Minute

	// ChatLockDelay: chat dikunci 24 jam setelah sesi (pertama/terakhir) berjalan
	ChatLockDelay = 24 * time.Hour

	// DefaultCommissionRate dipakai kalau booking tanpa paket
	defaultCommissionRate = 30
)

type BookingService struct {
	txm       repository.TxManager
	bookings  repository.BookingRepository
	sessions  repository.SessionRepository
	packages  repository.PackageRepository
	users     repository.UserRepository
	adminLogs repository.AdminLogRepository
	guard     *SlotGuard
	notifier  Notifier
	chat      ChatClient
	clock     Clock
}

func NewBookingService(
	txm repository.TxManager,
	bookings repository.BookingRepository,
	sessions repository.SessionRepository,
	packages repository.PackageRepository,
	users repository.UserRepository,
	adminLogs repository.AdminLogRepository,
	guard *SlotGuard,
	notifier Notifier,
	chat ChatClient,
	clock Clock,
) *BookingService {
	return &BookingService{
		txm:       txm,
		bookings:  bookings,
		sessions:  sessions,
		packages:  packages,
		users:     users,
		adminLogs: adminLogs,
		guard:     guard,
		notifier:  notifier,
		chat:      chat,
		clock:     clock,
	}
}

type CreateBookingInput struct {
	PatientID   uint64
	TherapistID uint64
	PackageID   *uint64
	Type        models.BookingType
	ScheduledAt time.Time
	Address     string
	Lat         float64
	Lng         float64
	// TotalPrice hanya dipakai kalau tanpa paket (sesi satuan)
	TotalPrice decimal.Decimal

	ConsentService           bool
	ConsentDataSharing       bool
	ConsentTerms             bool
	ConsentMedicalDisclaimer bool
}

// RespondWindow mengembalikan jendela respon terapis sesuai tipe booking
func RespondWindow(t models.BookingType) time.Duration {
	if t == models.BookingInstant {
		return RespondWindowInstant
	}
	return RespondWindowRegular
}

// Create membuat booking + N sesi secara atomik bersama cek slot.
// Sesi pertama langsung SCHEDULED di jadwal yang diminta, sisanya
// PENDING_SCHEDULING menunggu pasien atur jadwalnya.
func (s *BookingService) Create(in CreateBookingInput) (*models.Booking, error) {
	now := s.clock.Now()

	// Validasi murah dulu, sebelum buka transaksi
	if !in.ConsentService || !in.ConsentDataSharing || !in.ConsentTerms || !in.ConsentMedicalDisclaimer {
		return nil, errValidation("semua persetujuan wajib dicentang")
	}
	if err := s.guard.ValidateSlot(in.ScheduledAt, in.Type, now); err != nil {
		return nil, err
	}

	therapist, err := s.users.FindByID(in.TherapistID)
	if err != nil {
		return nil, errNotFound("terapis tidak ditemukan")
	}
	if therapist.RoleID != models.RoleTherapist {
		return nil, errValidation("user tersebut bukan terapis")
	}

	sessionCount := 1
	price := in.TotalPrice
	rate := decimal.NewFromInt(defaultCommissionRate)
	if in.PackageID != nil {
		pkg, err := s.packages.FindByID(*in.PackageID)
		if err != nil {
			return nil, errNotFound("paket tidak ditemukan")
		}
		sessionCount = pkg.SessionCount
		price = pkg.Price
		rate = pkg.CommissionRate
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, errValidation("harga tidak valid")
	}

	// Fee platform = harga * rate%, dibulatkan 2 desimal; sisanya hak terapis
	fee := price.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	net := price.Sub(fee)

	bookingUUID := uuid.NewString()
	booking := &models.Booking{
		UUID:                     bookingUUID,
		PatientID:                in.PatientID,
		TherapistID:              in.TherapistID,
		PackageID:                in.PackageID,
		ServiceAddress:           in.Address,
		ServiceLat:               in.Lat,
		ServiceLng:               in.Lng,
		TotalPrice:               price,
		AdminFeeAmount:           fee,
		TherapistNetTotal:        net,
		Type:                     in.Type,
		Status:                   models.BookingPending,
		ConsentService:           true,
		ConsentDataSharing:       true,
		ConsentTerms:             true,
		ConsentMedicalDisclaimer: true,
		PaymentOrderID:           models.BuildOrderID(bookingUUID),
	}

	// Cek overlap + insert harus satu transaksi serializable: dua request barengan
	// di jendela yang sama tidak boleh sama-sama lihat nol overlap
	err = s.txm.DoSerializable(func(tx *gorm.DB) error {
		if err := s.guard.Reserve(tx, in.TherapistID, in.ScheduledAt); err != nil {
			return err
		}
		if err := s.bookings.WithTx(tx).Create(booking); err != nil {
			return err
		}

		sessions := make([]models.Session, 0, sessionCount)
		first := in.ScheduledAt
		sessions = append(sessions, models.Session{
			BookingID:   booking.ID,
			TherapistID: in.TherapistID,
			SequenceNo:  1,
			ScheduledAt: &first,
			Status:      models.SessionScheduled,
		})
		for i := 2; i <= sessionCount; i++ {
			sessions = append(sessions, models.Session{
				BookingID:   booking.ID,
				TherapistID: in.TherapistID,
				SequenceNo:  i,
				Status:      models.SessionPendingScheduling,
			})
		}
		return s.sessions.WithTx(tx).CreateBatch(sessions)
	})
	if err != nil {
		if isSerializationFailure(err) {
			return nil, errConflict("slot keburu diambil, silakan pilih jam lain")
		}
		return nil, err
	}

	// Side effect di luar transaksi: chat room & notifikasi tidak boleh
	// nahan lock slot
	if err := s.chat.OpenRoom(booking.ID, []uint64{booking.PatientID, booking.TherapistID}); err != nil {
		log.Printf("[Booking] gagal buka chat room booking %d: %v", booking.ID, err)
	}
	if booking.Type == models.BookingInstant {
		s.notifier.Notify(booking.TherapistID,
			"Booking Instant Masuk! ⚡",
			"Ada pasien butuh kunjungan segera. Cek jadwalmu sekarang.",
			map[string]string{"booking_id": fmt.Sprintf("%d", booking.ID), "type": "instant_booking"})
	}

	return booking, nil
}

// Accept: terapis menerima booking yang sudah dibayar.
// Kalau deadline respon sudah lewat, booking malah di-cancel otomatis
// (refund PENDING) dan request accept-nya gagal.
func (s *BookingService) Accept(therapistID, bookingID uint64) (*models.Booking, error) {
	booking, err := s.bookings.FindByIDWithSessions(bookingID)
	if err != nil {
		return nil, errNotFound("booking tidak ditemukan")
	}
	if booking.TherapistID != therapistID {
		return nil, errNotFound("booking tidak ditemukan")
	}
	if booking.Status != models.BookingPaid {
		return nil, errState("booking belum dibayar atau sudah selesai")
	}
	if booking.TherapistRespondBy == nil {
		return nil, errState("booking belum punya deadline respon")
	}

	now := s.clock.Now()
	if now.After(*booking.TherapistRespondBy) {
		// Telat respon: auto-cancel, lalu tetap kembalikan error ke terapis
		if err := s.cancelWithRefund(booking, "terapis tidak merespon sebelum deadline"); err != nil {
			return nil, err
		}
		s.notifyBothCancelled(booking)
		return nil, errState("deadline respon sudah lewat, booking dibatalkan")
	}

	err = s.txm.Do(func(tx *gorm.DB) error {
		booking.TherapistAcceptedAt = &now
		// Chat dikunci 24 jam setelah sesi pertama berjalan
		if len(booking.Sessions) > 0 && booking.Sessions[0].ScheduledAt != nil {
			lockAt := booking.Sessions[0].ScheduledAt.Add(ChatLockDelay)
			booking.ChatLockedAt = &lockAt
		}
		return s.bookings.WithTx(tx).Save(booking)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(booking.PatientID,
		"Terapis Menerima Booking ✅",
		"Terapismu sudah konfirmasi. Sampai ketemu di jadwal kunjungan!",
		map[string]string{"booking_id": fmt.Sprintf("%d", booking.ID), "type": "booking_accepted"})

	return booking, nil
}

// Decline: terapis menolak booking yang sudah dibayar
func (s *BookingService) Decline(therapistID, bookingID uint64, reason string) error {
	booking, err := s.bookings.FindByID(bookingID)
	if err != nil {
		return errNotFound("booking tidak ditemukan")
	}
	if booking.TherapistID != therapistID {
		return errNotFound("booking tidak ditemukan")
	}
	if booking.Status != models.BookingPaid {
		return errState("booking belum dibayar atau sudah selesai")
	}

	if err := s.cancelWithRefund(booking, reason); err != nil {
		return err
	}
	s.notifyBothCancelled(booking)
	return nil
}

// CompleteRefund: admin menandai refund selesai. Idempoten — dipanggil dua kali
// untuk refund yang sudah COMPLETED jadi no-op.
func (s *BookingService) CompleteRefund(adminID, bookingID uint64, reference, note string) error {
	booking, err := s.bookings.FindByID(bookingID)
	if err != nil {
		return errNotFound("booking tidak ditemukan")
	}
	if booking.Status != models.BookingCancelled {
		return errState("refund hanya untuk booking yang dibatalkan")
	}
	if booking.RefundStatus == models.RefundCompleted {
		return nil
	}

	now := s.clock.Now()
	return s.txm.Do(func(tx *gorm.DB) error {
		booking.RefundStatus = models.RefundCompleted
		booking.RefundReference = reference
		booking.RefundNote = note
		booking.RefundedAt = &now
		if err := s.bookings.WithTx(tx).Save(booking); err != nil {
			return err
		}
		return s.adminLogs.WithTx(tx).Create(&models.AdminActionLog{
			AdminID:    adminID,
			Action:     models.AdminActionRefund,
			TargetType: "BOOKING",
			TargetID:   booking.ID,
			Note:       note,
		})
	})
}

// SwapTherapist: admin memindahkan booking ke terapis lain. Booking plus semua
// sesi non-terminalnya pindah dalam satu transaksi.
func (s *BookingService) SwapTherapist(adminID, bookingID, newTherapistID uint64, note string) error {
	booking, err := s.bookings.FindByID(bookingID)
	if err != nil {
		return errNotFound("booking tidak ditemukan")
	}
	newTherapist, err := s.users.FindByID(newTherapistID)
	if err != nil {
		return errNotFound("terapis pengganti tidak ditemukan")
	}
	if newTherapist.RoleID != models.RoleTherapist {
		return errValidation("user pengganti bukan terapis")
	}

	return s.txm.Do(func(tx *gorm.DB) error {
		booking.TherapistID = newTherapistID
		if err := s.bookings.WithTx(tx).Save(booking); err != nil {
			return err
		}
		if err := s.sessions.WithTx(tx).ReassignTherapist(booking.ID, newTherapistID); err != nil {
			return err
		}
		return s.adminLogs.WithTx(tx).Create(&models.AdminActionLog{
			AdminID:    adminID,
			Action:     models.AdminActionSwap,
			TargetType: "BOOKING",
			TargetID:   booking.ID,
			Note:       note,
		})
	})
}

// RespondTimeoutSweep membatalkan booking PAID yang lewat deadline respon terapis.
// Idempoten: booking yang sudah CANCELLED tidak kepilih lagi.
func (s *BookingService) RespondTimeoutSweep() error {
	overdue, err := s.bookings.FindRespondOverdue(s.clock.Now())
	if err != nil {
		return err
	}
	for i := range overdue {
		b := &overdue[i]
		if err := s.cancelWithRefund(b, "terapis tidak merespon sebelum deadline"); err != nil {
			log.Printf("[Sweep] gagal cancel booking %d: %v", b.ID, err)
			continue
		}
		s.notifyBothCancelled(b)
		log.Printf("[Sweep] booking %d dibatalkan (terapis tidak respon)", b.ID)
	}
	return nil
}

// ListPackages mengembalikan katalog paket yang masih aktif
func (s *BookingService) ListPackages() ([]models.TherapyPackage, error) {
	return s.packages.ListActive()
}

func (s *BookingService) ListByPatient(patientID uint64) ([]models.Booking, error) {
	return s.bookings.ListByPatient(patientID)
}

func (s *BookingService) ListByTherapist(therapistID uint64) ([]models.Booking, error) {
	return s.bookings.ListByTherapist(therapistID)
}

func (s *BookingService) cancelWithRefund(booking *models.Booking, reason string) error {
	return s.txm.Do(func(tx *gorm.DB) error {
		booking.Status = models.BookingCancelled
		booking.RefundStatus = models.RefundPending
		if booking.RefundNote == "" {
			booking.RefundNote = reason
		}
		return s.bookings.WithTx(tx).Save(booking)
	})
}

func (s *BookingService) notifyBothCancelled(booking *models.Booking) {
	data := map[string]string{"booking_id": fmt.Sprintf("%d", booking.ID), "type": "booking_cancelled"}
	s.notifier.Notify(booking.PatientID,
		"Booking Dibatalkan ❌",
		"Booking kamu dibatalkan. Dana akan dikembalikan, mohon tunggu proses refund.",
		data)
	s.notifier.Notify(booking.TherapistID,
		"Booking Dibatalkan",
		"Salah satu booking kamu dibatalkan.",
		data)
}
