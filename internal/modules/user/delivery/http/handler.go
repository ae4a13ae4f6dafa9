package handler

import (
	"net/http"

	userDto "evergreenrx.com/pharmanotify/internal/modules/user/dto"
	user "evergreenrx.com/pharmanotify/internal/modules/user/service"
	"evergreenrx.com/pharmanotify/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service user.AuthService
}

func NewAuthHandler(service user.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input userDto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
