package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fisiocare-backend/internal/models"
)

// Buffer 0 memaksa Enqueue lewat jalur fallback sinkron, jadi perilaku
// antriannya bisa dites tanpa goroutine worker.
func TestPayoutQueue_FullBufferFallsBackToSync(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	_, sessions := seedCompletedSessions(f, "70.00",
		[]models.SessionStatus{models.SessionCompleted})

	q := NewPayoutQueue(f.walletService(), 0)

	// Delivery dobel tetap menghasilkan satu kredit
	q.Enqueue(sessions[0].ID)
	q.Enqueue(sessions[0].ID)

	wallet, err := f.wallets.FindByTherapist(2)
	require.NoError(t, err)
	assert.Equal(t, "70", wallet.Balance.String())
	assert.Len(t, f.wallets.txs, 1)
}

func TestPayoutQueue_RejectsNonTerminalSession(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	_, sessions := seedCompletedSessions(f, "70.00",
		[]models.SessionStatus{models.SessionScheduled})

	q := NewPayoutQueue(f.walletService(), 0)
	q.Enqueue(sessions[0].ID)

	assert.Empty(t, f.wallets.txs)
	_, err := f.wallets.FindByTherapist(2)
	assert.Error(t, err)
}
