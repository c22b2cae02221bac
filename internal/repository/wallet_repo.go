package repository

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
)

type WalletRepository interface {
	WithTx(tx *gorm.DB) WalletRepository
	// FindOrCreateByTherapist: dompet dibuat lazy saat pertama kali dibutuhkan
	FindOrCreateByTherapist(therapistID uint64) (*models.Wallet, error)
	FindByTherapist(therapistID uint64) (*models.Wallet, error)
	FindByTherapistWithTransactions(therapistID uint64) (*models.Wallet, error)
	Save(w *models.Wallet) error
	// CreateTransaction menambah baris ledger. Tidak ada Update/Delete di sini,
	// dan memang jangan pernah ada.
	CreateTransaction(t *models.WalletTransaction) error
	// MonthlyIncome menjumlahkan kredit pendapatan (SESSION_FEE + FORFEIT_COMPENSATION)
	// terapis di bulan tertentu
	MonthlyIncome(therapistID uint64, year int, month time.Month) (decimal.Decimal, error)
}

type walletRepo struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepo{db: db}
}

func (r *walletRepo) WithTx(tx *gorm.DB) WalletRepository {
	if tx == nil {
		return r
	}
	return &walletRepo{db: tx}
}

func (r *walletRepo) FindOrCreateByTherapist(therapistID uint64) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("therapist_id = ?", therapistID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		w = models.Wallet{TherapistID: therapistID, Balance: decimal.Zero}
		if err := r.db.Create(&w).Error; err != nil {
			return nil, err
		}
		return &w, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *walletRepo) FindByTherapist(therapistID uint64) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("therapist_id = ?", therapistID).First(&w).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &w, nil
}

func (r *walletRepo) FindByTherapistWithTransactions(therapistID uint64) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).
		Where("therapist_id = ?", therapistID).
		First(&w).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &w, nil
}

func (r *walletRepo) Save(w *models.Wallet) error {
	return r.db.Save(w).Error
}

func (r *walletRepo) CreateTransaction(t *models.WalletTransaction) error {
	return r.db.Create(t).Error
}

func (r *walletRepo) MonthlyIncome(therapistID uint64, year int, month time.Month) (decimal.Decimal, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, 0)

	var row struct {
		Total decimal.Decimal
	}
	err := r.db.Model(&models.WalletTransaction{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Joins("JOIN wallets ON wallets.id = wallet_transactions.wallet_id").
		Where("wallets.therapist_id = ?", therapistID).
		Where("wallet_transactions.direction = ?", models.WalletCredit).
		Where("wallet_transactions.category IN ?",
			[]models.WalletTxCategory{models.WalletCategorySessionFee, models.WalletCategoryForfeitComp}).
		Where("wallet_transactions.created_at >= ? AND wallet_transactions.created_at < ?", start, end).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
