package models

import (
	"time"

	"gorm.io/gorm"
)

// Role ID: 1 Admin, 2 Terapis, 3 Pasien
const (
	RoleAdmin     uint = 1
	RoleTherapist uint = 2
	RolePatient   uint = 3
)

// User merepresentasikan tabel 'users' di database
type User struct {
	ID           uint64         `gorm:"primaryKey" json:"id"`
	RoleID       uint           `gorm:"not null" json:"role_id"`
	FullName     string         `gorm:"size:100;not null" json:"full_name"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // json:"-" artinya field ini TIDAK AKAN dikirim balik ke frontend (rahasia)
	Phone        string         `gorm:"column:phone_number;size:20;unique" json:"phone"`
	FCMToken     string         `gorm:"size:255" json:"-"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Struct untuk menangkap Input Login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
