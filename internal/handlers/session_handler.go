package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fisiocare-backend/internal/services"
	"fisiocare-backend/pkg/utils"
)

type SessionHandler struct {
	svc *services.SessionService
}

func NewSessionHandler(svc *services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) Schedule(c *gin.Context) {
	sessionID := utils.StringToUint64(c.Param("id"))
	var input struct {
		ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input salah", err.Error())
		return
	}

	sess, err := h.svc.Schedule(currentUserID(c), sessionID, input.ScheduledAt)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Sesi berhasil dijadwalkan", sess)
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	sessionID := utils.StringToUint64(c.Param("id"))
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	sess, err := h.svc.Cancel(currentUserID(c), sessionID, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Sesi dibatalkan", sess)
}

func (h *SessionHandler) Complete(c *gin.Context) {
	sessionID := utils.StringToUint64(c.Param("id"))
	var input struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&input)

	sess, err := h.svc.Complete(currentUserID(c), sessionID, input.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Sesi selesai", sess)
}
