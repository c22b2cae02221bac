package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
)

// ErrNotFound dikembalikan semua repo kalau record tidak ada, biar service
// tidak perlu tahu soal gorm.ErrRecordNotFound
var ErrNotFound = errors.New("record tidak ditemukan")

type BookingRepository interface {
	WithTx(tx *gorm.DB) BookingRepository
	Create(b *models.Booking) error
	FindByID(id uint64) (*models.Booking, error)
	FindByIDWithSessions(id uint64) (*models.Booking, error)
	FindByUUID(bookingUUID string) (*models.Booking, error)
	FindByPaymentOrderID(orderID string) (*models.Booking, error)
	Save(b *models.Booking) error
	ListByPatient(patientID uint64) ([]models.Booking, error)
	ListByTherapist(therapistID uint64) ([]models.Booking, error)
	// FindRespondOverdue: booking PAID yang deadline respon terapisnya sudah lewat
	// dan belum pernah di-accept
	FindRespondOverdue(now time.Time) ([]models.Booking, error)
	// FindPaidAllTerminal: kandidat auto-complete — PAID, punya minimal satu sesi,
	// dan tidak ada sesi non-terminal tersisa
	FindPaidAllTerminal() ([]models.Booking, error)
	// FindChatLockDue: chat sudah waktunya dikunci tapi room belum ditutup
	FindChatLockDue(now time.Time) ([]models.Booking, error)
}

type bookingRepo struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepo{db: db}
}

func (r *bookingRepo) WithTx(tx *gorm.DB) BookingRepository {
	if tx == nil {
		return r
	}
	return &bookingRepo{db: tx}
}

func (r *bookingRepo) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *bookingRepo) FindByID(id uint64) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &b, nil
}

func (r *bookingRepo) FindByIDWithSessions(id uint64) (*models.Booking, error) {
	var b models.Booking
	err := r.db.
		Preload("Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_no asc")
		}).
		First(&b, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &b, nil
}

func (r *bookingRepo) FindByUUID(bookingUUID string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.Where("uuid = ?", bookingUUID).First(&b).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &b, nil
}

func (r *bookingRepo) FindByPaymentOrderID(orderID string) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.Where("payment_order_id = ?", orderID).First(&b).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &b, nil
}

func (r *bookingRepo) Save(b *models.Booking) error {
	return r.db.Save(b).Error
}

func (r *bookingRepo) ListByPatient(patientID uint64) ([]models.Booking, error) {
	var out []models.Booking
	err := r.db.
		Preload("Sessions").
		Where("patient_id = ?", patientID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *bookingRepo) ListByTherapist(therapistID uint64) ([]models.Booking, error) {
	var out []models.Booking
	err := r.db.
		Preload("Sessions").
		Where("therapist_id = ?", therapistID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

func (r *bookingRepo) FindRespondOverdue(now time.Time) ([]models.Booking, error) {
	var out []models.Booking
	err := r.db.
		Where("status = ?", models.BookingPaid).
		Where("therapist_accepted_at IS NULL").
		Where("therapist_respond_by IS NOT NULL AND therapist_respond_by < ?", now).
		Find(&out).Error
	return out, err
}

func (r *bookingRepo) FindPaidAllTerminal() ([]models.Booking, error) {
	var out []models.Booking
	err := r.db.
		Where("status = ?", models.BookingPaid).
		Where("EXISTS (SELECT 1 FROM sessions s WHERE s.booking_id = bookings.id)").
		Where("NOT EXISTS (SELECT 1 FROM sessions s WHERE s.booking_id = bookings.id AND s.status IN ?)",
			[]models.SessionStatus{models.SessionPendingScheduling, models.SessionScheduled}).
		Find(&out).Error
	return out, err
}

func (r *bookingRepo) FindChatLockDue(now time.Time) ([]models.Booking, error) {
	var out []models.Booking
	err := r.db.
		Where("chat_locked_at IS NOT NULL AND chat_locked_at <= ?", now).
		Where("chat_closed_at IS NULL").
		Find(&out).Error
	return out, err
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
