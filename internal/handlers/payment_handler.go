package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fisiocare-backend/internal/services"
	"fisiocare-backend/pkg/utils"
)

type PaymentHandler struct {
	svc *services.PaymentService
}

func NewPaymentHandler(svc *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// InitiateCharge: pasien minta token pembayaran untuk booking-nya
func (h *PaymentHandler) InitiateCharge(c *gin.Context) {
	bookingID := utils.StringToUint64(c.Param("id"))

	result, err := h.svc.InitiateCharge(currentUserID(c), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Silakan selesaikan pembayaran", gin.H{
		"snap_token":   result.Token,
		"redirect_url": result.RedirectURL,
		"expired_at":   result.ExpiredAt,
	})
}

// HandleMidtransNotification menerima webhook dari Midtrans.
// Body dibaca mentah dulu karena payload aslinya ikut disimpan ke log audit.
func (h *PaymentHandler) HandleMidtransNotification(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Gagal baca body", nil)
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var notification services.MidtransNotification
	if err := json.Unmarshal(raw, &notification); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Invalid JSON", nil)
		return
	}

	status, err := h.svc.HandleNotification(notification, raw)
	if err != nil {
		respondError(c, err)
		return
	}

	// Response OK wajib biar Midtrans tahu notifikasinya sudah kita terima
	c.JSON(http.StatusOK, gin.H{"status": "ok", "payment_status": status})
}
