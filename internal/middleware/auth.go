package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/pkg/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Ambil Header Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Token tidak ditemukan", nil)
			c.Abort()
			return
		}

		// 2. Format harus "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Format token salah", nil)
			c.Abort()
			return
		}

		tokenString := parts[1]

		// 3. Validasi Token
		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Token tidak valid", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			utils.APIResponse(c, http.StatusUnauthorized, false, "Gagal memproses token", nil)
			c.Abort()
			return
		}

		// JWT parse angka sebagai float64 -> convert dulu baru simpan ke context
		var userID uint64
		if val, ok := claims["user_id"].(float64); ok {
			userID = uint64(val)
		}

		var roleID uint
		if val, ok := claims["role_id"].(float64); ok {
			roleID = uint(val)
		}

		c.Set("userID", userID)
		c.Set("roleID", roleID)

		c.Next()
	}
}

// RequireRole membatasi akses ke role tertentu
func RequireRole(roles ...uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, exists := c.Get("roleID")
		if !exists {
			utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak", nil)
			c.Abort()
			return
		}

		role := roleID.(uint)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		utils.APIResponse(c, http.StatusForbidden, false, "Akses Ditolak", nil)
		c.Abort()
	}
}

// AdminOnly: khusus admin
func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// TherapistOnly: khusus terapis
func TherapistOnly() gin.HandlerFunc {
	return RequireRole(models.RoleTherapist)
}

// PatientOnly: khusus pasien
func PatientOnly() gin.HandlerFunc {
	return RequireRole(models.RolePatient)
}
