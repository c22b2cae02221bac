package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/internal/services"
	"fisiocare-backend/pkg/utils"
)

type BookingHandler struct {
	svc *services.BookingService
}

func NewBookingHandler(svc *services.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

type createBookingInput struct {
	TherapistID uint64    `json:"therapist_id" binding:"required"`
	PackageID   *uint64   `json:"package_id"`
	Type        string    `json:"type" binding:"omitempty,oneof=REGULAR INSTANT"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"` // Format: 2026-01-20T08:00:00+07:00
	Address     string    `json:"address" binding:"required"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	TotalPrice  string    `json:"total_price"` // dipakai kalau tanpa paket

	ConsentService           bool `json:"consent_service"`
	ConsentDataSharing       bool `json:"consent_data_sharing"`
	ConsentTerms             bool `json:"consent_terms"`
	ConsentMedicalDisclaimer bool `json:"consent_medical_disclaimer"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	var input createBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input booking salah", err.Error())
		return
	}

	price := decimal.Zero
	if input.TotalPrice != "" {
		var err error
		price, err = decimal.NewFromString(input.TotalPrice)
		if err != nil {
			utils.APIResponse(c, http.StatusBadRequest, false, "Format harga salah", nil)
			return
		}
	}

	bookingType := models.BookingRegular
	if input.Type == string(models.BookingInstant) {
		bookingType = models.BookingInstant
	}

	booking, err := h.svc.Create(services.CreateBookingInput{
		PatientID:                currentUserID(c),
		TherapistID:              input.TherapistID,
		PackageID:                input.PackageID,
		Type:                     bookingType,
		ScheduledAt:              input.ScheduledAt,
		Address:                  input.Address,
		Lat:                      input.Lat,
		Lng:                      input.Lng,
		TotalPrice:               price,
		ConsentService:           input.ConsentService,
		ConsentDataSharing:       input.ConsentDataSharing,
		ConsentTerms:             input.ConsentTerms,
		ConsentMedicalDisclaimer: input.ConsentMedicalDisclaimer,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Booking berhasil dibuat! Silakan lanjut bayar.", booking)
}

func (h *BookingHandler) Packages(c *gin.Context) {
	packages, err := h.svc.ListPackages()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Daftar Paket Terapi", packages)
}

func (h *BookingHandler) MyBookings(c *gin.Context) {
	bookings, err := h.svc.ListByPatient(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "History Booking", bookings)
}

func (h *BookingHandler) TherapistBookings(c *gin.Context) {
	bookings, err := h.svc.ListByTherapist(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Daftar Booking Masuk", bookings)
}

func (h *BookingHandler) Accept(c *gin.Context) {
	bookingID := utils.StringToUint64(c.Param("id"))
	booking, err := h.svc.Accept(currentUserID(c), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Booking diterima", booking)
}

func (h *BookingHandler) Decline(c *gin.Context) {
	bookingID := utils.StringToUint64(c.Param("id"))
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	if err := h.svc.Decline(currentUserID(c), bookingID, input.Reason); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Booking ditolak, refund akan diproses", nil)
}
