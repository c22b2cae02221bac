package routes

import (
	"github.com/gin-gonic/gin"

	"fisiocare-backend/internal/handlers"
	"fisiocare-backend/internal/middleware"
)

type Handlers struct {
	Auth    *handlers.AuthHandler
	Booking *handlers.BookingHandler
	Session *handlers.SessionHandler
	Payment *handlers.PaymentHandler
	Wallet  *handlers.WalletHandler
	Admin   *handlers.AdminHandler
}

func SetupRoutes(r *gin.Engine, h Handlers) {
	r.Use(middleware.RateLimitMiddleware())

	// Grouping API dengan Versi (v1)
	api := r.Group("/api/v1")
	{
		api.POST("/auth/login", h.Auth.Login)

		// Katalog paket publik, buat halaman pricing sebelum login
		api.GET("/packages", h.Booking.Packages)

		// Webhook Midtrans harus publik (dipanggil server Midtrans, bukan user)
		api.POST("/payment/notification", h.Payment.HandleMidtransNotification)

		// PROTECTED ROUTES (Harus Login / Punya Token)
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// MODULE BOOKING (Pasien)
			patient := protected.Group("/")
			patient.Use(middleware.PatientOnly())
			{
				patient.POST("/bookings", h.Booking.Create)
				patient.GET("/bookings", h.Booking.MyBookings)
				patient.POST("/bookings/:id/charge", h.Payment.InitiateCharge)
				patient.POST("/sessions/:id/schedule", h.Session.Schedule)
				patient.POST("/sessions/:id/cancel", h.Session.Cancel)
			}

			// Group Khusus Terapis
			therapist := protected.Group("/therapist")
			therapist.Use(middleware.TherapistOnly())
			{
				therapist.GET("/bookings", h.Booking.TherapistBookings)
				therapist.POST("/bookings/:id/accept", h.Booking.Accept)
				therapist.POST("/bookings/:id/decline", h.Booking.Decline)
				therapist.POST("/sessions/:id/complete", h.Session.Complete)
				therapist.GET("/wallet", h.Wallet.MyWallet)
				therapist.GET("/wallet/income", h.Wallet.MonthlyIncome)
			}

			// Group Khusus Admin
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			{
				admin.POST("/bookings/:id/refund", h.Admin.CompleteRefund)
				admin.POST("/bookings/:id/swap-therapist", h.Admin.SwapTherapist)
				admin.POST("/sessions/:id/payout", h.Admin.ManualPayout)
				admin.POST("/wallets/topup", h.Admin.Topup)
				admin.POST("/wallets/withdraw", h.Admin.Withdraw)
			}
		}
	}
}
