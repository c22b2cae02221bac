package services

import (
	"log"

	"fisiocare-backend/internal/repository"
	"fisiocare-backend/pkg/utils"
)

// FCMNotifier mengirim push lewat Firebase Cloud Messaging.
// Token FCM user diambil dari DB tiap kirim; user tanpa token di-skip diam-diam.
type FCMNotifier struct {
	users repository.UserRepository
}

func NewFCMNotifier(users repository.UserRepository) *FCMNotifier {
	return &FCMNotifier{users: users}
}

func (n *FCMNotifier) Notify(userID uint64, title, body string, data map[string]string) {
	user, err := n.users.FindByID(userID)
	if err != nil {
		log.Printf("[Notif] user %d tidak ketemu: %v", userID, err)
		return
	}
	if user.FCMToken == "" {
		return
	}
	// Best-effort: error kirim cuma di-log, jangan sampai gagalin operasi inti
	if err := utils.SendNotification(user.FCMToken, title, body, data); err != nil {
		log.Printf("[Notif] gagal kirim ke user %d: %v", userID, err)
	}
}

// LogChatClient adalah implementasi default ChatClient. Layanan chat beneran
// hidup di service lain; di sini cukup dicatat biar alurnya keliatan di log.
type LogChatClient struct{}

func NewLogChatClient() *LogChatClient { return &LogChatClient{} }

func (LogChatClient) OpenRoom(bookingID uint64, participantIDs []uint64) error {
	log.Printf("[Chat] buka room booking %d untuk %v", bookingID, participantIDs)
	return nil
}

func (LogChatClient) CloseRoom(bookingID uint64) error {
	log.Printf("[Chat] tutup room booking %d", bookingID)
	return nil
}
