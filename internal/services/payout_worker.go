package services

import (
	"context"
	"log"
	"time"
)

// PayoutQueue adalah antrian payout in-process. Delivery-nya at-least-once:
// job yang gagal di-antri ulang setelah jeda, jadi worker WAJIB tahan
// dipanggil dobel — dan memang tahan, karena PayoutSession idempoten.
type PayoutQueue struct {
	jobs       chan uint64
	wallets    *WalletService
	retryDelay time.Duration
}

func NewPayoutQueue(wallets *WalletService, buffer int) *PayoutQueue {
	return &PayoutQueue{
		jobs:       make(chan uint64, buffer),
		wallets:    wallets,
		retryDelay: 30 * time.Second,
	}
}

// Enqueue menjadwalkan payout untuk satu sesi. Non-blocking; kalau buffer penuh
// job dijalankan sinkron saja daripada hilang.
func (q *PayoutQueue) Enqueue(sessionID uint64) {
	select {
	case q.jobs <- sessionID:
	default:
		log.Printf("[Payout] antrian penuh, sesi %d diproses langsung", sessionID)
		if err := q.wallets.PayoutSession(sessionID); err != nil {
			log.Printf("[Payout] sesi %d gagal: %v", sessionID, err)
		}
	}
}

// Start menjalankan worker sampai ctx selesai
func (q *PayoutQueue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sessionID := <-q.jobs:
				err := q.wallets.PayoutSession(sessionID)
				if err == nil {
					continue
				}
				// Error state/not-found tidak akan sembuh sendiri, jangan retry
				if IsKind(err, KindState) || IsKind(err, KindNotFound) {
					log.Printf("[Payout] sesi %d ditolak permanen: %v", sessionID, err)
					continue
				}
				log.Printf("[Payout] sesi %d gagal, retry %s lagi: %v", sessionID, q.retryDelay, err)
				go func(id uint64) {
					select {
					case <-ctx.Done():
					case <-time.After(q.retryDelay):
						q.Enqueue(id)
					}
				}(sessionID)
			}
		}
	}()
}
