package repository

import (
	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
)

type WebhookLogRepository interface {
	WithTx(tx *gorm.DB) WebhookLogRepository
	Create(l *models.MidtransWebhookLog) error
	CountByOrderID(orderID string) (int64, error)
}

type webhookLogRepo struct {
	db *gorm.DB
}

func NewWebhookLogRepository(db *gorm.DB) WebhookLogRepository {
	return &webhookLogRepo{db: db}
}

func (r *webhookLogRepo) WithTx(tx *gorm.DB) WebhookLogRepository {
	if tx == nil {
		return r
	}
	return &webhookLogRepo{db: tx}
}

func (r *webhookLogRepo) Create(l *models.MidtransWebhookLog) error {
	return r.db.Create(l).Error
}

func (r *webhookLogRepo) CountByOrderID(orderID string) (int64, error) {
	var n int64
	err := r.db.Model(&models.MidtransWebhookLog{}).
		Where("order_id = ?", orderID).
		Count(&n).Error
	return n, err
}

type AdminLogRepository interface {
	WithTx(tx *gorm.DB) AdminLogRepository
	Create(l *models.AdminActionLog) error
}

type adminLogRepo struct {
	db *gorm.DB
}

func NewAdminLogRepository(db *gorm.DB) AdminLogRepository {
	return &adminLogRepo{db: db}
}

func (r *adminLogRepo) WithTx(tx *gorm.DB) AdminLogRepository {
	if tx == nil {
		return r
	}
	return &adminLogRepo{db: tx}
}

func (r *adminLogRepo) Create(l *models.AdminActionLog) error {
	return r.db.Create(l).Error
}

type UserRepository interface {
	FindByID(id uint64) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(id uint64) (*models.User, error) {
	var u models.User
	if err := r.db.First(&u, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}

type PackageRepository interface {
	FindByID(id uint64) (*models.TherapyPackage, error)
	ListActive() ([]models.TherapyPackage, error)
}

type packageRepo struct {
	db *gorm.DB
}

func NewPackageRepository(db *gorm.DB) PackageRepository {
	return &packageRepo{db: db}
}

func (r *packageRepo) FindByID(id uint64) (*models.TherapyPackage, error) {
	var p models.TherapyPackage
	if err := r.db.First(&p, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &p, nil
}

func (r *packageRepo) ListActive() ([]models.TherapyPackage, error) {
	var out []models.TherapyPackage
	err := r.db.Where("is_active = ?", true).Find(&out).Error
	return out, err
}
