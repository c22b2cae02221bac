package repository

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxManager membungkus gorm transaction biar service bisa di-test pakai fake
// tanpa koneksi database beneran.
type TxManager interface {
	// Do menjalankan fn dalam satu transaksi read-committed biasa
	Do(fn func(tx *gorm.DB) error) error
	// DoSerializable dipakai khusus jalur booking slot: baca agregat (hitung overlap)
	// sekaligus nulis baris baru, jadi butuh isolasi paling ketat
	DoSerializable(fn func(tx *gorm.DB) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Do(fn func(tx *gorm.DB) error) error {
	return m.db.Transaction(fn)
}

func (m *gormTxManager) DoSerializable(fn func(tx *gorm.DB) error) error {
	return m.db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelSerializable})
}
