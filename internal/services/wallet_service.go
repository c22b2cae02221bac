package services

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/internal/repository"
)

type WalletService struct {
	txm       repository.TxManager
	bookings  repository.BookingRepository
	sessions  repository.SessionRepository
	wallets   repository.WalletRepository
	adminLogs repository.AdminLogRepository
	notifier  Notifier
	clock     Clock
}

func NewWalletService(
	txm repository.TxManager,
	bookings repository.BookingRepository,
	sessions repository.SessionRepository,
	wallets repository.WalletRepository,
	adminLogs repository.AdminLogRepository,
	notifier Notifier,
	clock Clock,
) *WalletService {
	return &WalletService{
		txm:       txm,
		bookings:  bookings,
		sessions:  sessions,
		wallets:   wallets,
		adminLogs: adminLogs,
		notifier:  notifier,
		clock:     clock,
	}
}

// PayoutSession mengkredit dompet terapis untuk satu sesi COMPLETED/FORFEITED,
// tepat sekali. Flag is_payout_distributed dicek DAN di-set di transaksi yang
// sama dengan update saldo + insert ledger — itu satu-satunya mekanisme anti
// payout dobel, termasuk kalau job antrian ke-deliver dua kali.
func (s *WalletService) PayoutSession(sessionID uint64) error {
	var (
		therapistID uint64
		amount      decimal.Decimal
		category    models.WalletTxCategory
		credited    bool
	)

	err := s.txm.Do(func(tx *gorm.DB) error {
		// Baris sesi dikunci dulu biar dua worker tidak sama-sama lihat flag false
		sess, err := s.sessions.WithTx(tx).FindByIDForUpdate(sessionID)
		if err != nil {
			return errNotFound("sesi tidak ditemukan")
		}
		if sess.Status != models.SessionCompleted && sess.Status != models.SessionForfeited {
			return errState("sesi belum selesai, payout belum boleh jalan")
		}
		if sess.IsPayoutDistributed {
			// Sudah pernah dibayar — no-op
			return nil
		}

		booking, err := s.bookings.WithTx(tx).FindByID(sess.BookingID)
		if err != nil {
			return err
		}
		total, err := s.sessions.WithTx(tx).CountByBooking(sess.BookingID)
		if err != nil {
			return err
		}
		if total == 0 {
			return errState("booking tidak punya sesi")
		}

		// Nominal per sesi = net terapis / jumlah sesi, bulat 2 desimal
		amount = booking.TherapistNetTotal.
			Div(decimal.NewFromInt(total)).
			Round(2)
		category = models.WalletCategorySessionFee
		if sess.Status == models.SessionForfeited {
			category = models.WalletCategoryForfeitComp
		}
		therapistID = sess.TherapistID

		wallet, err := s.wallets.WithTx(tx).FindOrCreateByTherapist(sess.TherapistID)
		if err != nil {
			return err
		}
		wallet.Balance = wallet.Balance.Add(amount)
		if err := s.wallets.WithTx(tx).Save(wallet); err != nil {
			return err
		}
		sid := sess.ID
		if err := s.wallets.WithTx(tx).CreateTransaction(&models.WalletTransaction{
			WalletID:  wallet.ID,
			SessionID: &sid,
			Direction: models.WalletCredit,
			Amount:    amount,
			Category:  category,
		}); err != nil {
			return err
		}

		sess.IsPayoutDistributed = true
		if err := s.sessions.WithTx(tx).Save(sess); err != nil {
			return err
		}
		credited = true
		return nil
	})
	if err != nil {
		return err
	}

	if credited {
		log.Printf("[Payout] sesi %d -> terapis %d sebesar %s (%s)", sessionID, therapistID, amount.String(), category)
		s.notifier.Notify(therapistID,
			"Pendapatan Masuk 💰",
			fmt.Sprintf("Rp%s sudah masuk ke dompetmu.", amount.StringFixed(2)),
			map[string]string{"session_id": fmt.Sprintf("%d", sessionID), "type": "payout"})
	}
	return nil
}

// ManualPayout: admin memicu payout langsung (misal job antrian macet).
// Aman dipanggil kapan pun karena PayoutSession idempoten.
func (s *WalletService) ManualPayout(adminID, sessionID uint64, note string) error {
	if err := s.PayoutSession(sessionID); err != nil {
		return err
	}
	return s.txm.Do(func(tx *gorm.DB) error {
		return s.adminLogs.WithTx(tx).Create(&models.AdminActionLog{
			AdminID:    adminID,
			Action:     models.AdminActionManualPayout,
			TargetType: "SESSION",
			TargetID:   sessionID,
			Note:       note,
		})
	})
}

// Topup: admin menambah saldo dompet terapis (penyesuaian manual).
// Catatan admin wajib diisi — ini masuk audit.
func (s *WalletService) Topup(adminID, therapistID uint64, amount decimal.Decimal, note string) error {
	if note == "" {
		return errValidation("catatan admin wajib diisi")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return errValidation("nominal harus lebih dari nol")
	}

	return s.txm.Do(func(tx *gorm.DB) error {
		wallet, err := s.wallets.WithTx(tx).FindOrCreateByTherapist(therapistID)
		if err != nil {
			return err
		}
		wallet.Balance = wallet.Balance.Add(amount)
		if err := s.wallets.WithTx(tx).Save(wallet); err != nil {
			return err
		}
		if err := s.wallets.WithTx(tx).CreateTransaction(&models.WalletTransaction{
			WalletID:  wallet.ID,
			Direction: models.WalletCredit,
			Amount:    amount,
			Category:  models.WalletCategoryAdjustment,
			Note:      note,
		}); err != nil {
			return err
		}
		return s.adminLogs.WithTx(tx).Create(&models.AdminActionLog{
			AdminID:    adminID,
			Action:     models.AdminActionTopup,
			TargetType: "WALLET",
			TargetID:   wallet.ID,
			Note:       note,
		})
	})
}

// Withdraw: admin mencairkan dana dompet terapis. Saldo dikurangi langsung
// supaya tidak bisa ditarik dobel.
func (s *WalletService) Withdraw(adminID, therapistID uint64, amount decimal.Decimal, note string) error {
	if note == "" {
		return errValidation("catatan admin wajib diisi")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return errValidation("nominal harus lebih dari nol")
	}

	return s.txm.Do(func(tx *gorm.DB) error {
		wallet, err := s.wallets.WithTx(tx).FindByTherapist(therapistID)
		if err != nil {
			return errNotFound("dompet tidak ditemukan")
		}
		if wallet.Balance.LessThan(amount) {
			return errValidation("saldo tidak cukup")
		}
		wallet.Balance = wallet.Balance.Sub(amount)
		if err := s.wallets.WithTx(tx).Save(wallet); err != nil {
			return err
		}
		if err := s.wallets.WithTx(tx).CreateTransaction(&models.WalletTransaction{
			WalletID:  wallet.ID,
			Direction: models.WalletDebit,
			Amount:    amount,
			Category:  models.WalletCategoryWithdrawal,
			Note:      note,
		}); err != nil {
			return err
		}
		return s.adminLogs.WithTx(tx).Create(&models.AdminActionLog{
			AdminID:    adminID,
			Action:     models.AdminActionWithdraw,
			TargetType: "WALLET",
			TargetID:   wallet.ID,
			Note:       note,
		})
	})
}

// GetWallet mengembalikan dompet terapis beserta riwayat transaksinya
func (s *WalletService) GetWallet(therapistID uint64) (*models.Wallet, error) {
	w, err := s.wallets.FindByTherapistWithTransactions(therapistID)
	if err != nil {
		return nil, errNotFound("dompet tidak ditemukan")
	}
	return w, nil
}

// MonthlyIncome menjumlahkan pendapatan terapis di satu bulan
func (s *WalletService) MonthlyIncome(therapistID uint64, year int, month time.Month) (decimal.Decimal, error) {
	return s.wallets.MonthlyIncome(therapistID, year, month)
}
