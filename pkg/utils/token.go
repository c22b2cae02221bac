package utils

import (
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret string

// SetJWTSecret dipanggil sekali dari main dengan nilai dari config.
// Tanpa ini, fallback ke env JWT_SECRET langsung (berguna buat script lepasan).
func SetJWTSecret(secret string) {
	jwtSecret = secret
}

func secretKey() []byte {
	if jwtSecret != "" {
		return []byte(jwtSecret)
	}
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("rahasia_dapur_fisiocare") // Fallback kalau .env lupa diisi
}

// GenerateToken membuat JWT string yang berisi User ID dan Role
func GenerateToken(userID uint64, roleID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role_id": roleID,
		"exp":     time.Now().Add(time.Hour * 24).Unix(), // Token berlaku 24 jam
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken memverifikasi apakah token valid atau tidak
func ValidateToken(encodedToken string) (*jwt.Token, error) {
	return jwt.Parse(encodedToken, func(token *jwt.Token) (interface{}, error) {
		// Validasi algoritma enkripsi (harus HMAC)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secretKey(), nil
	})
}
