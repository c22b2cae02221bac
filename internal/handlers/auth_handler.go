package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fisiocare-backend/internal/models"
	"fisiocare-backend/internal/repository"
	"fisiocare-backend/pkg/utils"
)

type AuthHandler struct {
	users repository.UserRepository
}

func NewAuthHandler(users repository.UserRepository) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.APIResponse(c, http.StatusBadRequest, false, "Input salah", err.Error())
		return
	}

	user, err := h.users.FindByEmail(input.Email)
	if err != nil {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Email atau password salah", nil)
		return
	}
	if !utils.CheckPassword(input.Password, user.PasswordHash) {
		utils.APIResponse(c, http.StatusUnauthorized, false, "Email atau password salah", nil)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.RoleID)
	if err != nil {
		utils.APIResponse(c, http.StatusInternalServerError, false, "Gagal membuat token", nil)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Login Berhasil", gin.H{
		"token": token,
		"user":  user,
	})
}
