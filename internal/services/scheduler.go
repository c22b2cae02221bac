package services

import (
	"context"
	"log"
	"time"
)

// Scheduler menjalankan sweep berkala. Tiap sweep punya ticker sendiri dan
// tidak berbagi state — semuanya idempoten, aman jalan barengan dengan
// transisi yang dipicu user di baris lain.
type Scheduler struct {
	bookings *BookingService
	sessions *SessionService

	RespondTimeoutInterval time.Duration
	ExpireInterval         time.Duration
	ChatLockInterval       time.Duration
	AutoCompleteInterval   time.Duration
}

func NewScheduler(bookings *BookingService, sessions *SessionService) *Scheduler {
	return &Scheduler{
		bookings:               bookings,
		sessions:               sessions,
		RespondTimeoutInterval: time.Minute,
		ExpireInterval:         time.Hour,
		ChatLockInterval:       5 * time.Minute,
		AutoCompleteInterval:   5 * time.Minute,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, "respond-timeout", s.RespondTimeoutInterval, s.bookings.RespondTimeoutSweep)
	go s.loop(ctx, "expire", s.ExpireInterval, s.sessions.ExpireSweep)
	go s.loop(ctx, "chat-lock", s.ChatLockInterval, s.sessions.ChatLockSweep)
	go s.loop(ctx, "auto-complete", s.AutoCompleteInterval, s.sessions.AutoCompleteSweep)
	log.Println("[Sweep] scheduler jalan")
}

func (s *Scheduler) loop(ctx context.Context, name string, interval time.Duration, fn func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(); err != nil {
				log.Printf("[Sweep] %s error: %v", name, err)
			}
		}
	}
}
