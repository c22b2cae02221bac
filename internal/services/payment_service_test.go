package services

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisiocare-backend/internal/models"
)

const testServerKey = "SB-Mid-server-test"

func signedNotif(orderID, transactionStatus string) MidtransNotification {
	n := MidtransNotification{
		OrderID:           orderID,
		TransactionStatus: transactionStatus,
		StatusCode:        "200",
		GrossAmount:       "100.00",
	}
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + testServerKey))
	n.SignatureKey = hex.EncodeToString(sum[:])
	return n
}

func seedPendingBooking(f *fixture) *models.Booking {
	firstAt := f.clock.now.Add(3 * time.Hour)
	bookingUUID := uuid.NewString()
	b := &models.Booking{
		UUID:              bookingUUID,
		PatientID:         10,
		TherapistID:       2,
		TotalPrice:        decimal.RequireFromString("100.00"),
		AdminFeeAmount:    decimal.RequireFromString("30.00"),
		TherapistNetTotal: decimal.RequireFromString("70.00"),
		Type:              models.BookingRegular,
		Status:            models.BookingPending,
		PaymentOrderID:    models.BuildOrderID(bookingUUID),
	}
	_ = f.bookings.Create(b)
	_ = f.sessions.CreateBatch([]models.Session{{
		BookingID:   b.ID,
		TherapistID: 2,
		SequenceNo:  1,
		ScheduledAt: &firstAt,
		Status:      models.SessionScheduled,
	}})
	return b
}

func TestMapTransactionStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want models.PaymentStatus
	}{
		{"settlement", models.PaymentPaid},
		{"capture", models.PaymentPaid},
		{"pending", models.PaymentPending},
		{"authorize", models.PaymentPending},
		{"expire", models.PaymentExpired},
		{"cancel", models.PaymentCancelled},
		{"deny", models.PaymentCancelled},
		{"refund", models.PaymentCancelled},
		{"partial_refund", models.PaymentCancelled},
		{"failure", models.PaymentFailed},
		{"", models.PaymentFailed},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MapTransactionStatus(tt.raw), "status %q", tt.raw)
	}
}

func TestHandleNotification_InvalidSignature(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	b := seedPendingBooking(f)
	svc := f.paymentService(testServerKey)

	n := signedNotif(b.PaymentOrderID, "settlement")
	n.SignatureKey = "palsu"

	_, err := svc.HandleNotification(n, []byte(`{"transaction_status":"settlement"}`))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindSignature))

	// Booking tidak berubah sedikit pun
	stored, _ := f.bookings.FindByID(b.ID)
	assert.Equal(t, models.BookingPending, stored.Status)

	// Delivery mentahnya tetap masuk audit log
	require.Len(t, f.webhooks.logs, 1)
	assert.False(t, f.webhooks.logs[0].SignatureValid)
	assert.Nil(t, f.webhooks.logs[0].BookingID)
}

func TestHandleNotification_SettlementMarksPaid(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	b := seedPendingBooking(f)
	svc := f.paymentService(testServerKey)

	status, err := svc.HandleNotification(signedNotif(b.PaymentOrderID, "settlement"),
		[]byte(`{"transaction_status":"settlement"}`))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, status)

	stored, _ := f.bookings.FindByID(b.ID)
	assert.Equal(t, models.BookingPaid, stored.Status)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)

	// Deadline respon terapis mulai berjalan dari sekarang (booking reguler = 60 menit)
	require.NotNil(t, stored.TherapistRespondBy)
	assert.True(t, stored.TherapistRespondBy.Equal(now.Add(RespondWindowRegular)))

	// Jadwal kunci chat di-backfill dari sesi pertama
	require.NotNil(t, stored.ChatLockedAt)
	assert.True(t, stored.ChatLockedAt.Equal(now.Add(3*time.Hour).Add(ChatLockDelay)))

	// Dua pihak dapat notifikasi, tepat sekali
	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, b.PatientID, f.notifier.sent[0].UserID)
	assert.Equal(t, b.TherapistID, f.notifier.sent[1].UserID)
}

func TestHandleNotification_DuplicateSettlement(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	b := seedPendingBooking(f)
	svc := f.paymentService(testServerKey)

	payload := []byte(`{"transaction_status":"settlement"}`)
	n := signedNotif(b.PaymentOrderID, "settlement")

	_, err := svc.HandleNotification(n, payload)
	require.NoError(t, err)
	firstRespondBy := func() time.Time {
		stored, _ := f.bookings.FindByID(b.ID)
		return *stored.TherapistRespondBy
	}()

	// Midtrans kirim ulang webhook yang sama 10 menit kemudian
	f.clock.now = now.Add(10 * time.Minute)
	_, err = svc.HandleNotification(n, payload)
	require.NoError(t, err)

	stored, _ := f.bookings.FindByID(b.ID)
	assert.Equal(t, models.BookingPaid, stored.Status)
	// Deadline respon TIDAK bergeser karena delivery kedua
	assert.True(t, stored.TherapistRespondBy.Equal(firstRespondBy))
	// Notifikasi tidak dobel
	assert.Len(t, f.notifier.sent, 2)
	// Tapi kedua delivery tercatat di audit log
	count, _ := f.webhooks.CountByOrderID(b.PaymentOrderID)
	assert.Equal(t, int64(2), count)
}

func TestHandleNotification_ExpireBeforePaid(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	b := seedPendingBooking(f)
	svc := f.paymentService(testServerKey)

	status, err := svc.HandleNotification(signedNotif(b.PaymentOrderID, "expire"),
		[]byte(`{"transaction_status":"expire"}`))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentExpired, status)

	stored, _ := f.bookings.FindByID(b.ID)
	assert.Equal(t, models.BookingCancelled, stored.Status)
	assert.Equal(t, models.RefundPending, stored.RefundStatus)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, b.PatientID, f.notifier.sent[0].UserID)
}

func TestHandleNotification_StalePendingAfterSettlement(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	b := seedPendingBooking(f)
	svc := f.paymentService(testServerKey)

	_, err := svc.HandleNotification(signedNotif(b.PaymentOrderID, "settlement"),
		[]byte(`{"transaction_status":"settlement"}`))
	require.NoError(t, err)
	firstRespondBy := func() time.Time {
		stored, _ := f.bookings.FindByID(b.ID)
		return *stored.TherapistRespondBy
	}()

	// Webhook pending yang nyasar datang SETELAH settlement — urutan delivery
	// Midtrans tidak dijamin
	f.clock.now = now.Add(5 * time.Minute)
	status, err := svc.HandleNotification(signedNotif(b.PaymentOrderID, "pending"),
		[]byte(`{"transaction_status":"pending"}`))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, status)

	// PAID monoton: status pembayaran tidak boleh turun
	stored, _ := f.bookings.FindByID(b.ID)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, models.BookingPaid, stored.Status)
	assert.True(t, stored.TherapistRespondBy.Equal(firstRespondBy))

	// Settlement yang di-replay setelahnya juga bukan transisi baru:
	// deadline tetap, notifikasi tidak kekirim ulang
	f.clock.now = now.Add(10 * time.Minute)
	_, err = svc.HandleNotification(signedNotif(b.PaymentOrderID, "settlement"),
		[]byte(`{"transaction_status":"settlement"}`))
	require.NoError(t, err)

	stored, _ = f.bookings.FindByID(b.ID)
	assert.True(t, stored.TherapistRespondBy.Equal(firstRespondBy))
	assert.Len(t, f.notifier.sent, 2)

	// Status tak dikenal (FAILED) juga tidak menurunkan PAID
	_, err = svc.HandleNotification(signedNotif(b.PaymentOrderID, "failure"),
		[]byte(`{"transaction_status":"failure"}`))
	require.NoError(t, err)
	stored, _ = f.bookings.FindByID(b.ID)
	assert.Equal(t, models.PaymentPaid, stored.PaymentStatus)

	// Semua delivery tetap masuk audit log
	count, _ := f.webhooks.CountByOrderID(b.PaymentOrderID)
	assert.Equal(t, int64(4), count)
}

func TestHandleNotification_ExpireAfterPaidIsIgnoredForBookingState(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	b := seedPendingBooking(f)
	svc := f.paymentService(testServerKey)

	_, err := svc.HandleNotification(signedNotif(b.PaymentOrderID, "settlement"),
		[]byte(`{"transaction_status":"settlement"}`))
	require.NoError(t, err)

	// Webhook expire yang datang telat setelah settlement tidak membatalkan booking
	_, err = svc.HandleNotification(signedNotif(b.PaymentOrderID, "expire"),
		[]byte(`{"transaction_status":"expire"}`))
	require.NoError(t, err)

	stored, _ := f.bookings.FindByID(b.ID)
	assert.Equal(t, models.BookingPaid, stored.Status)
	assert.Equal(t, models.PaymentExpired, stored.PaymentStatus)
	assert.NotEqual(t, models.RefundPending, stored.RefundStatus)
}

func TestHandleNotification_UnknownOrderStillLogged(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	svc := f.paymentService(testServerKey)

	_, err := svc.HandleNotification(signedNotif("ORDER-ASING-123", "settlement"), []byte(`{}`))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))

	require.Len(t, f.webhooks.logs, 1)
	assert.True(t, f.webhooks.logs[0].SignatureValid)
	assert.Nil(t, f.webhooks.logs[0].BookingID)
}

func TestHandleNotification_FallbackLookupByOrderIDUUID(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	b := seedPendingBooking(f)

	// Simulasi data lama: kolom payment_order_id kosong, tapi order id Midtrans
	// masih bisa di-parse balik ke UUID booking
	orderID := b.PaymentOrderID
	b.PaymentOrderID = ""
	_ = f.bookings.Save(b)

	svc := f.paymentService(testServerKey)
	_, err := svc.HandleNotification(signedNotif(orderID, "settlement"),
		[]byte(`{"transaction_status":"settlement"}`))
	require.NoError(t, err)

	stored, _ := f.bookings.FindByID(b.ID)
	assert.Equal(t, models.BookingPaid, stored.Status)
}

func TestInitiateCharge(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.addUser(10, models.RolePatient)
	b := seedPendingBooking(f)

	expiredAt := now.Add(24 * time.Hour)
	f.gateway.result = &ChargeResult{
		Provider:    "midtrans",
		Token:       "snap-token",
		RedirectURL: "https://app.sandbox.midtrans.com/snap/v4/redirection/snap-token",
		Instruction: []byte(`{"token":"snap-token"}`),
		ExpiredAt:   &expiredAt,
	}

	svc := f.paymentService(testServerKey)
	result, err := svc.InitiateCharge(10, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "snap-token", result.Token)

	stored, _ := f.bookings.FindByID(b.ID)
	assert.Equal(t, "midtrans", stored.PaymentProvider)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentExpiredAt)
}

func TestInitiateCharge_GatewayErrorLeavesBookingUntouched(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.addUser(10, models.RolePatient)
	b := seedPendingBooking(f)
	f.gateway.err = errors.New("midtrans 500")

	svc := f.paymentService(testServerKey)
	_, err := svc.InitiateCharge(10, b.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindExternal))

	stored, _ := f.bookings.FindByID(b.ID)
	assert.Empty(t, stored.PaymentProvider)
	assert.Empty(t, stored.PaymentStatus)
	assert.Nil(t, stored.PaymentExpiredAt)
}

func TestInitiateCharge_OnlyPendingBooking(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.addUser(10, models.RolePatient)
	b := seedPendingBooking(f)
	b.Status = models.BookingPaid
	_ = f.bookings.Save(b)

	svc := f.paymentService(testServerKey)
	_, err := svc.InitiateCharge(10, b.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindState))
	assert.Zero(t, f.gateway.calls)
}
