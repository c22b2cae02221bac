package utils

import (
	"github.com/gin-gonic/gin"
)

// Semua endpoint balas lewat bentuk ini biar aplikasi pasien/terapis
// cukup cek satu field success
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"` // null ga perlu ikut dikirim
}

func APIResponse(c *gin.Context, code int, success bool, message string, data interface{}) {
	c.JSON(code, Response{
		Success: success,
		Message: message,
		Data:    data,
	})
}
