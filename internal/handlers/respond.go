package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fisiocare-backend/internal/services"
	"fisiocare-backend/pkg/utils"
)

// respondError memetakan error taxonomy service ke HTTP status
func respondError(c *gin.Context, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		code := http.StatusInternalServerError
		switch se.Kind {
		case services.KindValidation:
			code = http.StatusBadRequest
		case services.KindConflict:
			code = http.StatusConflict
		case services.KindNotFound:
			code = http.StatusNotFound
		case services.KindState:
			code = http.StatusUnprocessableEntity
		case services.KindSignature:
			code = http.StatusUnauthorized
		case services.KindExternal:
			code = http.StatusBadGateway
		}
		utils.APIResponse(c, code, false, se.Msg, nil)
		return
	}
	utils.APIResponse(c, http.StatusInternalServerError, false, "Terjadi kesalahan server", nil)
}

func currentUserID(c *gin.Context) uint64 {
	val, _ := c.Get("userID")
	id, _ := val.(uint64)
	return id
}
