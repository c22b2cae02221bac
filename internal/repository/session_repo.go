package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fisiocare-backend/internal/models"
)

// SlotDuration: satu sesi selalu menempati jendela 90 menit [scheduledAt, +90m)
const SlotDuration = 90 * time.Minute

type SessionRepository interface {
	WithTx(tx *gorm.DB) SessionRepository
	CreateBatch(sessions []models.Session) error
	FindByID(id uint64) (*models.Session, error)
	// FindByIDForUpdate mengunci baris sesi (FOR UPDATE) — dipakai jalur payout
	// supaya dua worker tidak bisa sama-sama baca is_payout_distributed = false
	FindByIDForUpdate(id uint64) (*models.Session, error)
	Save(s *models.Session) error
	ListByBooking(bookingID uint64) ([]models.Session, error)
	CountByBooking(bookingID uint64) (int64, error)
	// CountOverlappingForUpdate mengunci dulu semua sesi kandidat bentrok milik
	// terapis (status SCHEDULED / PENDING_SCHEDULING di jendela overlap) lalu
	// menghitungnya. WAJIB dipanggil dalam transaksi serializable.
	CountOverlappingForUpdate(therapistID uint64, scheduledAt time.Time) (int64, error)
	// ReassignTherapist memindahkan semua sesi non-terminal booking ke terapis baru
	ReassignTherapist(bookingID, newTherapistID uint64) error
	// ExpireStale: sesi PENDING_SCHEDULING yang booking-nya lebih tua dari cutoff
	// di-set EXPIRED massal. Return jumlah baris yang berubah.
	ExpireStale(cutoff time.Time) (int64, error)
}

type sessionRepo struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) WithTx(tx *gorm.DB) SessionRepository {
	if tx == nil {
		return r
	}
	return &sessionRepo{db: tx}
}

func (r *sessionRepo) CreateBatch(sessions []models.Session) error {
	return r.db.Create(&sessions).Error
}

func (r *sessionRepo) FindByID(id uint64) (*models.Session, error) {
	var s models.Session
	if err := r.db.First(&s, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) FindByIDForUpdate(id uint64) (*models.Session, error) {
	var s models.Session
	err := r.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &s, nil
}

func (r *sessionRepo) Save(s *models.Session) error {
	return r.db.Save(s).Error
}

func (r *sessionRepo) ListByBooking(bookingID uint64) ([]models.Session, error) {
	var out []models.Session
	err := r.db.
		Where("booking_id = ?", bookingID).
		Order("sequence_no asc").
		Find(&out).Error
	return out, err
}

func (r *sessionRepo) CountByBooking(bookingID uint64) (int64, error) {
	var n int64
	err := r.db.Model(&models.Session{}).
		Where("booking_id = ?", bookingID).
		Count(&n).Error
	return n, err
}

func (r *sessionRepo) CountOverlappingForUpdate(therapistID uint64, scheduledAt time.Time) (int64, error) {
	// Jendela [s, s+90m) dan [t, t+90m) overlap kalau s > t-90m dan s < t+90m.
	// SELECT ... FOR UPDATE dulu (bukan langsung COUNT) supaya baris kandidatnya
	// benar-benar terkunci sampai commit — request kedua yang nyerempet jendela
	// yang sama bakal nunggu di sini, lalu melihat hasil insert request pertama.
	var rows []models.Session
	err := r.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("therapist_id = ?", therapistID).
		Where("status IN ?", []models.SessionStatus{models.SessionScheduled, models.SessionPendingScheduling}).
		Where("scheduled_at > ? AND scheduled_at < ?",
			scheduledAt.Add(-SlotDuration), scheduledAt.Add(SlotDuration)).
		Find(&rows).Error
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *sessionRepo) ReassignTherapist(bookingID, newTherapistID uint64) error {
	return r.db.Model(&models.Session{}).
		Where("booking_id = ?", bookingID).
		Where("status IN ?", []models.SessionStatus{models.SessionPendingScheduling, models.SessionScheduled}).
		Update("therapist_id", newTherapistID).Error
}

func (r *sessionRepo) ExpireStale(cutoff time.Time) (int64, error) {
	res := r.db.Model(&models.Session{}).
		Where("status = ?", models.SessionPendingScheduling).
		Where("booking_id IN (SELECT id FROM bookings WHERE created_at < ?)", cutoff).
		Update("status", models.SessionExpired)
	return res.RowsAffected, res.Error
}
