package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fisiocare-backend/internal/services"
	"fisiocare-backend/pkg/utils"
)

type AdminHandler struct {
	bookings *services.BookingService
	wallets  *services.WalletService
}

func NewAdminHandler(bookings *services.BookingService, wallets *services.WalletService) *AdminHandler {
	return &AdminHandler{bookings: bookings, wallets: wallets}
}

// CompleteRefund menandai refund booking yang dibatalkan sudah ditransfer balik
func (h *AdminHandler) CompleteRefund(c *gin.Context) {
	bookingID := utils.StringToUint64(c.Param("id"))
	var input struct {
		Reference string `json:"reference" binding:"required"`
		Note      string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input salah", err.Error())
		return
	}

	if err := h.bookings.CompleteRefund(currentUserID(c), bookingID, input.Reference, input.Note); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Refund ditandai selesai", nil)
}

// SwapTherapist memindahkan booking (plus sesi yang belum jalan) ke terapis lain
func (h *AdminHandler) SwapTherapist(c *gin.Context) {
	bookingID := utils.StringToUint64(c.Param("id"))
	var input struct {
		TherapistID uint64 `json:"therapist_id" binding:"required"`
		Note        string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input salah", err.Error())
		return
	}

	if err := h.bookings.SwapTherapist(currentUserID(c), bookingID, input.TherapistID, input.Note); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Terapis berhasil diganti", nil)
}

// ManualPayout memicu payout sesi secara manual (misal worker antrian macet)
func (h *AdminHandler) ManualPayout(c *gin.Context) {
	sessionID := utils.StringToUint64(c.Param("id"))
	var input struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&input)

	if err := h.wallets.ManualPayout(currentUserID(c), sessionID, input.Note); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Payout diproses", nil)
}

type walletAdjustInput struct {
	TherapistID uint64 `json:"therapist_id" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Note        string `json:"note" binding:"required"`
}

func (h *AdminHandler) Topup(c *gin.Context) {
	var input walletAdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input salah", err.Error())
		return
	}
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Format nominal salah", nil)
		return
	}

	if err := h.wallets.Topup(currentUserID(c), input.TherapistID, amount, input.Note); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Topup berhasil", nil)
}

func (h *AdminHandler) Withdraw(c *gin.Context) {
	var input walletAdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input salah", err.Error())
		return
	}
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Format nominal salah", nil)
		return
	}

	if err := h.wallets.Withdraw(currentUserID(c), input.TherapistID, amount, input.Note); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Penarikan berhasil diproses", nil)
}
