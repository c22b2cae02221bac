package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword meng-hash password pakai bcrypt sebelum disimpan ke users
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword mencocokkan password login dengan hash di database
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
