package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/internal/repository"
)

// In-memory fakes so service logic can be tested without MySQL.
// Find* return clones and Save writes clones back, mimicking DB round trips.

type fakeTxm struct{}

func (fakeTxm) Do(fn func(tx *gorm.DB) error) error             { return fn(nil) }
func (fakeTxm) DoSerializable(fn func(tx *gorm.DB) error) error { return fn(nil) }

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type sentNotif struct {
	UserID uint64
	Title  string
	Body   string
	Data   map[string]string
}

type fakeNotifier struct{ sent []sentNotif }

func (f *fakeNotifier) Notify(userID uint64, title, body string, data map[string]string) {
	f.sent = append(f.sent, sentNotif{UserID: userID, Title: title, Body: body, Data: data})
}

type fakeChat struct {
	opened []uint64
	closed []uint64
}

func (f *fakeChat) OpenRoom(bookingID uint64, _ []uint64) error {
	f.opened = append(f.opened, bookingID)
	return nil
}

func (f *fakeChat) CloseRoom(bookingID uint64) error {
	f.closed = append(f.closed, bookingID)
	return nil
}

type fakeEnqueuer struct{ queued []uint64 }

func (f *fakeEnqueuer) Enqueue(sessionID uint64) { f.queued = append(f.queued, sessionID) }

type fakeGateway struct {
	result *ChargeResult
	err    error
	calls  int
}

func (f *fakeGateway) CreateCharge(_ *models.Booking, _ *models.User) (*ChargeResult, error) {
	f.calls++
	return f.result, f.err
}

// --- repositories ---

type fakeBookingRepo struct {
	byID     map[uint64]*models.Booking
	nextID   uint64
	sessions *fakeSessionRepo
}

func (f *fakeBookingRepo) WithTx(*gorm.DB) repository.BookingRepository { return f }

func (f *fakeBookingRepo) Create(b *models.Booking) error {
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now()
	clone := *b
	f.byID[b.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) FindByID(id uint64) (*models.Booking, error) {
	b, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) FindByIDWithSessions(id uint64) (*models.Booking, error) {
	b, err := f.FindByID(id)
	if err != nil {
		return nil, err
	}
	b.Sessions, _ = f.sessions.ListByBooking(id)
	return b, nil
}

func (f *fakeBookingRepo) FindByUUID(u string) (*models.Booking, error) {
	for _, b := range f.byID {
		if b.UUID == u {
			clone := *b
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookingRepo) FindByPaymentOrderID(orderID string) (*models.Booking, error) {
	for _, b := range f.byID {
		if b.PaymentOrderID == orderID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBookingRepo) Save(b *models.Booking) error {
	clone := *b
	f.byID[b.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) ListByPatient(patientID uint64) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.byID {
		if b.PatientID == patientID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByTherapist(therapistID uint64) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.byID {
		if b.TherapistID == therapistID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindRespondOverdue(now time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.byID {
		if b.Status == models.BookingPaid && b.TherapistAcceptedAt == nil &&
			b.TherapistRespondBy != nil && b.TherapistRespondBy.Before(now) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindPaidAllTerminal() ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.byID {
		if b.Status != models.BookingPaid {
			continue
		}
		sessions, _ := f.sessions.ListByBooking(b.ID)
		if len(sessions) == 0 {
			continue
		}
		allTerminal := true
		for _, s := range sessions {
			if !s.Status.IsTerminal() {
				allTerminal = false
				break
			}
		}
		if allTerminal {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) FindChatLockDue(now time.Time) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.byID {
		if b.ChatLockedAt != nil && !b.ChatLockedAt.After(now) && b.ChatClosedAt == nil {
			out = append(out, *b)
		}
	}
	return out, nil
}

type fakeSessionRepo struct {
	byID     map[uint64]*models.Session
	nextID   uint64
	bookings *fakeBookingRepo
}

func (f *fakeSessionRepo) WithTx(*gorm.DB) repository.SessionRepository { return f }

func (f *fakeSessionRepo) CreateBatch(sessions []models.Session) error {
	for i := range sessions {
		f.nextID++
		sessions[i].ID = f.nextID
		clone := sessions[i]
		f.byID[clone.ID] = &clone
	}
	return nil
}

func (f *fakeSessionRepo) FindByID(id uint64) (*models.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *s
	return &clone, nil
}

func (f *fakeSessionRepo) FindByIDForUpdate(id uint64) (*models.Session, error) {
	return f.FindByID(id)
}

func (f *fakeSessionRepo) Save(s *models.Session) error {
	clone := *s
	f.byID[s.ID] = &clone
	return nil
}

func (f *fakeSessionRepo) ListByBooking(bookingID uint64) ([]models.Session, error) {
	var out []models.Session
	for _, s := range f.byID {
		if s.BookingID == bookingID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNo < out[j].SequenceNo })
	return out, nil
}

func (f *fakeSessionRepo) CountByBooking(bookingID uint64) (int64, error) {
	sessions, _ := f.ListByBooking(bookingID)
	return int64(len(sessions)), nil
}

func (f *fakeSessionRepo) CountOverlappingForUpdate(therapistID uint64, scheduledAt time.Time) (int64, error) {
	var n int64
	lo := scheduledAt.Add(-repository.SlotDuration)
	hi := scheduledAt.Add(repository.SlotDuration)
	for _, s := range f.byID {
		if s.TherapistID != therapistID {
			continue
		}
		if s.Status != models.SessionScheduled && s.Status != models.SessionPendingScheduling {
			continue
		}
		if s.ScheduledAt == nil {
			continue
		}
		if s.ScheduledAt.After(lo) && s.ScheduledAt.Before(hi) {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) ReassignTherapist(bookingID, newTherapistID uint64) error {
	for _, s := range f.byID {
		if s.BookingID == bookingID &&
			(s.Status == models.SessionPendingScheduling || s.Status == models.SessionScheduled) {
			s.TherapistID = newTherapistID
		}
	}
	return nil
}

func (f *fakeSessionRepo) ExpireStale(cutoff time.Time) (int64, error) {
	var n int64
	for _, s := range f.byID {
		if s.Status != models.SessionPendingScheduling {
			continue
		}
		b, ok := f.bookings.byID[s.BookingID]
		if !ok || !b.CreatedAt.Before(cutoff) {
			continue
		}
		s.Status = models.SessionExpired
		n++
	}
	return n, nil
}

type fakeWalletRepo struct {
	byTherapist map[uint64]*models.Wallet
	txs         []models.WalletTransaction
	nextID      uint64
}

func (f *fakeWalletRepo) WithTx(*gorm.DB) repository.WalletRepository { return f }

func (f *fakeWalletRepo) FindOrCreateByTherapist(therapistID uint64) (*models.Wallet, error) {
	if w, ok := f.byTherapist[therapistID]; ok {
		clone := *w
		return &clone, nil
	}
	f.nextID++
	w := &models.Wallet{ID: f.nextID, TherapistID: therapistID, Balance: decimal.Zero}
	f.byTherapist[therapistID] = w
	clone := *w
	return &clone, nil
}

func (f *fakeWalletRepo) FindByTherapist(therapistID uint64) (*models.Wallet, error) {
	w, ok := f.byTherapist[therapistID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *w
	return &clone, nil
}

func (f *fakeWalletRepo) FindByTherapistWithTransactions(therapistID uint64) (*models.Wallet, error) {
	w, err := f.FindByTherapist(therapistID)
	if err != nil {
		return nil, err
	}
	for _, t := range f.txs {
		if t.WalletID == w.ID {
			w.Transactions = append(w.Transactions, t)
		}
	}
	return w, nil
}

func (f *fakeWalletRepo) Save(w *models.Wallet) error {
	clone := *w
	f.byTherapist[w.TherapistID] = &clone
	return nil
}

func (f *fakeWalletRepo) CreateTransaction(t *models.WalletTransaction) error {
	t.ID = uint64(len(f.txs) + 1)
	t.CreatedAt = time.Now()
	f.txs = append(f.txs, *t)
	return nil
}

func (f *fakeWalletRepo) MonthlyIncome(therapistID uint64, year int, month time.Month) (decimal.Decimal, error) {
	w, ok := f.byTherapist[therapistID]
	if !ok {
		return decimal.Zero, nil
	}
	total := decimal.Zero
	for _, t := range f.txs {
		if t.WalletID != w.ID || t.Direction != models.WalletCredit {
			continue
		}
		if t.Category != models.WalletCategorySessionFee && t.Category != models.WalletCategoryForfeitComp {
			continue
		}
		if t.CreatedAt.Year() == year && t.CreatedAt.Month() == month {
			total = total.Add(t.Amount)
		}
	}
	return total, nil
}

type fakeWebhookRepo struct{ logs []models.MidtransWebhookLog }

func (f *fakeWebhookRepo) WithTx(*gorm.DB) repository.WebhookLogRepository { return f }

func (f *fakeWebhookRepo) Create(l *models.MidtransWebhookLog) error {
	l.ID = uint64(len(f.logs) + 1)
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeWebhookRepo) CountByOrderID(orderID string) (int64, error) {
	var n int64
	for _, l := range f.logs {
		if l.OrderID == orderID {
			n++
		}
	}
	return n, nil
}

type fakeAdminLogRepo struct{ logs []models.AdminActionLog }

func (f *fakeAdminLogRepo) WithTx(*gorm.DB) repository.AdminLogRepository { return f }

func (f *fakeAdminLogRepo) Create(l *models.AdminActionLog) error {
	l.ID = uint64(len(f.logs) + 1)
	f.logs = append(f.logs, *l)
	return nil
}

type fakeUserRepo struct{ byID map[uint64]*models.User }

func (f *fakeUserRepo) FindByID(id uint64) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

type fakePackageRepo struct {
	byID map[uint64]*models.TherapyPackage
}

func (f *fakePackageRepo) FindByID(id uint64) (*models.TherapyPackage, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakePackageRepo) ListActive() ([]models.TherapyPackage, error) {
	var out []models.TherapyPackage
	for _, p := range f.byID {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

// --- fixture ---

type fixture struct {
	clock    *fakeClock
	notifier *fakeNotifier
	chat     *fakeChat
	payouts  *fakeEnqueuer
	gateway  *fakeGateway

	bookings  *fakeBookingRepo
	sessions  *fakeSessionRepo
	wallets   *fakeWalletRepo
	webhooks  *fakeWebhookRepo
	adminLogs *fakeAdminLogRepo
	users     *fakeUserRepo
	packages  *fakePackageRepo

	guard *SlotGuard
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		clock:     &fakeClock{now: now},
		notifier:  &fakeNotifier{},
		chat:      &fakeChat{},
		payouts:   &fakeEnqueuer{},
		gateway:   &fakeGateway{},
		bookings:  &fakeBookingRepo{byID: map[uint64]*models.Booking{}},
		sessions:  &fakeSessionRepo{byID: map[uint64]*models.Session{}},
		wallets:   &fakeWalletRepo{byTherapist: map[uint64]*models.Wallet{}},
		webhooks:  &fakeWebhookRepo{},
		adminLogs: &fakeAdminLogRepo{},
		users:     &fakeUserRepo{byID: map[uint64]*models.User{}},
		packages:  &fakePackageRepo{byID: map[uint64]*models.TherapyPackage{}},
	}
	f.bookings.sessions = f.sessions
	f.sessions.bookings = f.bookings
	f.guard = NewSlotGuard(f.sessions)
	return f
}

func (f *fixture) bookingService() *BookingService {
	return NewBookingService(fakeTxm{}, f.bookings, f.sessions, f.packages, f.users,
		f.adminLogs, f.guard, f.notifier, f.chat, f.clock)
}

func (f *fixture) sessionService() *SessionService {
	return NewSessionService(fakeTxm{}, f.bookings, f.sessions, f.guard, f.notifier,
		f.chat, f.payouts, f.clock)
}

func (f *fixture) paymentService(serverKey string) *PaymentService {
	return NewPaymentService(fakeTxm{}, f.bookings, f.sessions, f.users, f.webhooks,
		f.gateway, f.notifier, f.clock, serverKey)
}

func (f *fixture) walletService() *WalletService {
	return NewWalletService(fakeTxm{}, f.bookings, f.sessions, f.wallets, f.adminLogs,
		f.notifier, f.clock)
}

func (f *fixture) addUser(id uint64, role uint) *models.User {
	u := &models.User{ID: id, RoleID: role, FullName: "User", IsActive: true}
	f.users.byID[id] = u
	return u
}
