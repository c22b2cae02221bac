package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet adalah dompet terapis, satu per terapis, dibuat lazy saat payout pertama.
// Balance cuma cache: nilainya harus selalu sama dengan penjumlahan bertanda
// semua WalletTransaction miliknya. Update Balance WAJIB satu transaksi DB
// dengan insert WalletTransaction-nya.
type Wallet struct {
	ID          uint64          `gorm:"primaryKey" json:"id"`
	TherapistID uint64          `gorm:"uniqueIndex;not null" json:"therapist_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Transactions []WalletTransaction `gorm:"foreignKey:WalletID" json:"transactions,omitempty"`
}

type WalletTxDirection string

const (
	WalletCredit WalletTxDirection = "CREDIT"
	WalletDebit  WalletTxDirection = "DEBIT"
)

type WalletTxCategory string

const (
	WalletCategorySessionFee  WalletTxCategory = "SESSION_FEE"
	WalletCategoryForfeitComp WalletTxCategory = "FORFEIT_COMPENSATION"
	WalletCategoryWithdrawal  WalletTxCategory = "WITHDRAWAL"
	WalletCategoryAdjustment  WalletTxCategory = "ADJUSTMENT"
)

// WalletTransaction adalah ledger append-only: tidak pernah di-update atau dihapus.
// Koreksi dilakukan dengan baris baru berlawanan arah, bukan edit.
type WalletTransaction struct {
	ID        uint64            `gorm:"primaryKey" json:"id"`
	WalletID  uint64            `gorm:"index;not null" json:"wallet_id"`
	SessionID *uint64           `gorm:"index" json:"session_id,omitempty"` // null untuk withdrawal/adjustment manual
	Direction WalletTxDirection `gorm:"size:10;not null" json:"direction"`
	Amount    decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category  WalletTxCategory  `gorm:"size:25;not null;index" json:"category"`
	Note      string            `gorm:"size:255" json:"note,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// Signed mengembalikan nominal bertanda (debit = minus)
func (t WalletTransaction) Signed() decimal.Decimal {
	if t.Direction == WalletDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
