package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"fisiocare-backend/internal/config"
	"fisiocare-backend/internal/handlers"
	"fisiocare-backend/internal/repository"
	"fisiocare-backend/internal/routes"
	"fisiocare-backend/internal/services"
	"fisiocare-backend/pkg/utils"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()
	utils.SetJWTSecret(cfg.JWTSecret)

	// 2. Connect DB
	db, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatal(err)
	}

	// 3. Init Firebase (boleh gagal di lokal, notif jadi no-op)
	if err := utils.InitFCM(cfg.FirebaseCredential); err != nil {
		log.Printf("Warning: FCM tidak aktif: %v", err)
	}

	// 4. Rakit semua komponen — dependency dioper eksplisit lewat constructor
	txm := repository.NewTxManager(db)
	bookingRepo := repository.NewBookingRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	webhookRepo := repository.NewWebhookLogRepository(db)
	adminLogRepo := repository.NewAdminLogRepository(db)
	userRepo := repository.NewUserRepository(db)
	packageRepo := repository.NewPackageRepository(db)

	clock := services.NewClock()
	notifier := services.NewFCMNotifier(userRepo)
	chat := services.NewLogChatClient()
	gateway := services.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransProduction)
	guard := services.NewSlotGuard(sessionRepo)

	walletSvc := services.NewWalletService(txm, bookingRepo, sessionRepo, walletRepo, adminLogRepo, notifier, clock)
	payoutQueue := services.NewPayoutQueue(walletSvc, 128)

	bookingSvc := services.NewBookingService(txm, bookingRepo, sessionRepo, packageRepo, userRepo, adminLogRepo, guard, notifier, chat, clock)
	sessionSvc := services.NewSessionService(txm, bookingRepo, sessionRepo, guard, notifier, chat, payoutQueue, clock)
	paymentSvc := services.NewPaymentService(txm, bookingRepo, sessionRepo, userRepo, webhookRepo, gateway, notifier, clock, cfg.MidtransServerKey)

	// 5. Background: worker payout + sweep berkala
	ctx := context.Background()
	payoutQueue.Start(ctx)
	services.NewScheduler(bookingSvc, sessionSvc).Start(ctx)

	// 6. HTTP
	r := gin.Default()
	routes.SetupRoutes(r, routes.Handlers{
		Auth:    handlers.NewAuthHandler(userRepo),
		Booking: handlers.NewBookingHandler(bookingSvc),
		Session: handlers.NewSessionHandler(sessionSvc),
		Payment: handlers.NewPaymentHandler(paymentSvc),
		Wallet:  handlers.NewWalletHandler(walletSvc, clock),
		Admin:   handlers.NewAdminHandler(bookingSvc, walletSvc),
	})

	r.GET("/ping", func(c *gin.Context) {
		utils.APIResponse(c, 200, true, "Server OK!", nil)
	})

	log.Println("Server berjalan di port " + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
