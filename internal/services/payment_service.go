package services

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/internal/repository"
)

// MidtransNotification adalah body webhook dari Midtrans.
// Midtrans kirim banyak field, kita cuma butuh ini.
type MidtransNotification struct {
	TransactionStatus string `json:"transaction_status"`
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
}

// MapTransactionStatus memetakan vocabulary status Midtrans ke status internal.
// Tabelnya fixed — jangan tambah case tanpa update tabel di dokumentasi juga.
func MapTransactionStatus(transactionStatus string) models.PaymentStatus {
	switch transactionStatus {
	case "settlement", "capture":
		return models.PaymentPaid
	case "pending", "authorize":
		return models.PaymentPending
	case "expire":
		return models.PaymentExpired
	case "cancel", "deny", "refund", "partial_refund":
		return models.PaymentCancelled
	default:
		return models.PaymentFailed
	}
}

type PaymentService struct {
	txm       repository.TxManager
	bookings  repository.BookingRepository
	sessions  repository.SessionRepository
	users     repository.UserRepository
	webhooks  repository.WebhookLogRepository
	gateway   PaymentGateway
	notifier  Notifier
	clock     Clock
	serverKey string
}

func NewPaymentService(
	txm repository.TxManager,
	bookings repository.BookingRepository,
	sessions repository.SessionRepository,
	users repository.UserRepository,
	webhooks repository.WebhookLogRepository,
	gateway PaymentGateway,
	notifier Notifier,
	clock Clock,
	serverKey string,
) *PaymentService {
	return &PaymentService{
		txm:       txm,
		bookings:  bookings,
		sessions:  sessions,
		users:     users,
		webhooks:  webhooks,
		gateway:   gateway,
		notifier:  notifier,
		clock:     clock,
		serverKey: serverKey,
	}
}

// InitiateCharge memulai pembayaran booking PENDING lewat gateway.
// Kalau gateway error, field pembayaran booking tidak disentuh sama sekali.
func (s *PaymentService) InitiateCharge(patientID, bookingID uint64) (*ChargeResult, error) {
	booking, err := s.bookings.FindByID(bookingID)
	if err != nil {
		return nil, errNotFound("booking tidak ditemukan")
	}
	if booking.PatientID != patientID {
		return nil, errNotFound("booking tidak ditemukan")
	}
	if booking.Status != models.BookingPending {
		return nil, errState("booking sudah dibayar atau dibatalkan")
	}

	customer, err := s.users.FindByID(booking.PatientID)
	if err != nil {
		return nil, errNotFound("data pasien tidak ditemukan")
	}

	result, err := s.gateway.CreateCharge(booking, customer)
	if err != nil {
		return nil, errExternal("gagal membuat transaksi pembayaran: " + err.Error())
	}

	err = s.txm.Do(func(tx *gorm.DB) error {
		booking.PaymentProvider = result.Provider
		booking.PaymentStatus = models.PaymentPending
		booking.PaymentInstruction = datatypes.JSON(result.Instruction)
		booking.PaymentExpiredAt = result.ExpiredAt
		return s.bookings.WithTx(tx).Save(booking)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VerifySignature mengecek signature webhook Midtrans:
// sha512(order_id + status_code + gross_amount + server_key)
func (s *PaymentService) VerifySignature(n MidtransNotification) bool {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + s.serverKey))
	return hex.EncodeToString(sum[:]) == n.SignatureKey
}

// HandleNotification merekonsiliasi webhook Midtrans ke state booking.
// Webhook bisa datang dobel, telat, atau acak urutannya — semua jalur di sini
// harus idempoten. Apapun hasilnya, notifikasi dicatat ke midtrans_webhook_logs.
func (s *PaymentService) HandleNotification(n MidtransNotification, rawPayload []byte) (models.PaymentStatus, error) {
	// 1. Signature dicek duluan, sebelum percaya field lain.
	// Gagal = tolak keras, tapi delivery mentahnya tetap dicatat buat audit.
	if !s.VerifySignature(n) {
		s.appendLog(n, nil, "", false, rawPayload)
		log.Printf("[Webhook] signature tidak valid untuk order %s", n.OrderID)
		return "", errSignature("signature webhook tidak valid")
	}

	mapped := MapTransactionStatus(n.TransactionStatus)

	// 2. Cari booking: order id tersimpan dulu, fallback parse UUID dari order id
	booking, err := s.bookings.FindByPaymentOrderID(n.OrderID)
	if err != nil {
		if bookingUUID, ok := models.ParseOrderID(n.OrderID); ok {
			booking, err = s.bookings.FindByUUID(bookingUUID)
		}
	}
	if err != nil || booking == nil {
		s.appendLog(n, nil, mapped, true, rawPayload)
		log.Printf("[Webhook] booking tidak ketemu untuk order %s", n.OrderID)
		return mapped, errNotFound("booking tidak ditemukan untuk order tersebut")
	}

	s.appendLog(n, &booking.ID, mapped, true, rawPayload)

	// 3. Duplicate delivery: status sudah sama DAN payload gateway sudah pernah
	// tersimpan — tidak ada yang perlu diubah
	if booking.PaymentStatus == mapped && len(booking.GatewayPayload) > 0 {
		deliveries, _ := s.webhooks.CountByOrderID(n.OrderID)
		log.Printf("[Webhook] order %s duplikat (delivery ke-%d, status tetap %s)", n.OrderID, deliveries, mapped)
		return mapped, nil
	}

	wasPaid := booking.PaymentStatus == models.PaymentPaid

	// 4. PAID itu monoton. Webhook non-terminal yang nyasar telat (pending/authorize
	// atau status tak dikenal) tidak boleh menurunkan status — kalau sempat turun,
	// settlement yang di-replay bakal dianggap transisi baru dan notifikasi kekirim
	// dobel. Satu-satunya jalan keluar dari PAID adalah reversal EXPIRED/CANCELLED.
	if wasPaid && mapped != models.PaymentPaid &&
		mapped != models.PaymentExpired && mapped != models.PaymentCancelled {
		log.Printf("[Webhook] order %s status %s diabaikan, pembayaran sudah PAID", n.OrderID, mapped)
		return mapped, nil
	}

	becamePaid := false
	becameCancelled := false

	err = s.txm.Do(func(tx *gorm.DB) error {
		booking.PaymentStatus = mapped
		booking.GatewayPayload = datatypes.JSON(rawPayload)

		switch {
		case mapped == models.PaymentPaid && !wasPaid:
			// Transisi PAID pertama: set deadline respon terapis + backfill
			// jadwal kunci chat kalau belum ada
			becamePaid = true
			booking.Status = models.BookingPaid
			respondBy := s.clock.Now().Add(RespondWindow(booking.Type))
			booking.TherapistRespondBy = &respondBy
			if booking.ChatLockedAt == nil {
				if lockAt := s.firstSessionLockTime(tx, booking.ID); lockAt != nil {
					booking.ChatLockedAt = lockAt
				}
			}

		case (mapped == models.PaymentExpired || mapped == models.PaymentCancelled) && !wasPaid:
			// Gagal bayar sebelum sempat PAID: booking batal, refund menunggu
			// diproses (kalau memang ada dana nyangkut di gateway)
			if booking.Status != models.BookingCancelled {
				becameCancelled = true
				booking.Status = models.BookingCancelled
				booking.RefundStatus = models.RefundPending
			}
		}

		return s.bookings.WithTx(tx).Save(booking)
	})
	if err != nil {
		return mapped, err
	}

	// 5. Notifikasi setelah commit, tepat sekali per transisi
	if becamePaid {
		data := map[string]string{"booking_id": fmt.Sprintf("%d", booking.ID), "type": "payment_success"}
		s.notifier.Notify(booking.PatientID,
			"Pembayaran Berhasil! ✅",
			"Terima kasih! Pembayaranmu sudah kami terima. Menunggu konfirmasi terapis.",
			data)
		s.notifier.Notify(booking.TherapistID,
			"Booking Baru Masuk! 🔔",
			"Ada pasien yang memesan jasamu. Segera konfirmasi sebelum deadline!",
			data)
		log.Printf("[Webhook] order %s -> PAID (booking %d)", n.OrderID, booking.ID)
	} else if becameCancelled {
		s.notifier.Notify(booking.PatientID,
			"Pembayaran Gagal/Expired ❌",
			"Maaf, pesananmu dibatalkan karena pembayaran gagal atau waktu habis.",
			map[string]string{"booking_id": fmt.Sprintf("%d", booking.ID), "type": "booking_cancelled"})
		log.Printf("[Webhook] order %s -> %s, booking %d dibatalkan", n.OrderID, mapped, booking.ID)
	} else {
		log.Printf("[Webhook] order %s -> %s", n.OrderID, mapped)
	}

	return mapped, nil
}

// firstSessionLockTime: jadwal kunci chat = sesi pertama + 24 jam
func (s *PaymentService) firstSessionLockTime(tx *gorm.DB, bookingID uint64) *time.Time {
	sessions, err := s.sessions.WithTx(tx).ListByBooking(bookingID)
	if err != nil || len(sessions) == 0 || sessions[0].ScheduledAt == nil {
		return nil
	}
	lockAt := sessions[0].ScheduledAt.Add(ChatLockDelay)
	return &lockAt
}

func (s *PaymentService) appendLog(n MidtransNotification, bookingID *uint64, mapped models.PaymentStatus, sigValid bool, raw []byte) {
	entry := &models.MidtransWebhookLog{
		OrderID:           n.OrderID,
		BookingID:         bookingID,
		PaymentStatus:     string(mapped),
		TransactionStatus: n.TransactionStatus,
		SignatureValid:    sigValid,
		Payload:           datatypes.JSON(raw),
	}
	if err := s.webhooks.Create(entry); err != nil {
		// Log audit gagal bukan alasan menolak webhook yang sah
		log.Printf("[Webhook] gagal simpan log order %s: %v", n.OrderID, err)
	}
}
