package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fisiocare-backend/internal/services"
	"fisiocare-backend/pkg/utils"
)

type WalletHandler struct {
	svc   *services.WalletService
	clock services.Clock
}

func NewWalletHandler(svc *services.WalletService, clock services.Clock) *WalletHandler {
	return &WalletHandler{svc: svc, clock: clock}
}

// MyWallet menampilkan saldo saat ini & riwayat transaksi terapis
func (h *WalletHandler) MyWallet(c *gin.Context) {
	wallet, err := h.svc.GetWallet(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Dompet Saya", wallet)
}

// MonthlyIncome menampilkan pendapatan bulan tertentu (?year=2026&month=8,
// default bulan berjalan)
func (h *WalletHandler) MonthlyIncome(c *gin.Context) {
	now := h.clock.Now()
	year := now.Year()
	month := now.Month()

	if v := c.Query("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := c.Query("month"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m >= 1 && m <= 12 {
			month = time.Month(m)
		}
	}

	total, err := h.svc.MonthlyIncome(currentUserID(c), year, month)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Pendapatan Bulanan", gin.H{
		"year":  year,
		"month": int(month),
		"total": total,
	})
}
