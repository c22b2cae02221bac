package utils

import (
	"context"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

var fcmClient *messaging.Client

// InitFCM menginisialisasi koneksi ke Firebase
func InitFCM(credentialPath string) error {
	opt := option.WithCredentialsFile(credentialPath)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return err
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return err
	}

	fcmClient = client
	log.Println("🔥 Firebase Cloud Messaging Ready!")
	return nil
}

// SendNotification mengirim pesan ke satu device (FCM Token)
func SendNotification(token string, title string, body string, data map[string]string) error {
	if fcmClient == nil {
		return nil
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data, // Data tambahan (misal: booking_id: "123")
	}

	_, err := fcmClient.Send(context.Background(), message)
	if err != nil {
		log.Printf("Error sending message: %s", err)
		return err
	}

	return nil
}
