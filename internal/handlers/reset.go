package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vlogapp/api/internal/store"
)

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

const genericResetMessage = "If the email exists, a reset link has been sent"

func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	issue, err := h.reset.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if issue == nil {
		c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
		return
	}

	// Demo only - do not do this in production. The token belongs in an
	// email, not in the response to whoever asked for it.
	c.JSON(http.StatusOK, gin.H{
		"message":    genericResetMessage,
		"resetToken": issue.Token,
		"resetUrl":   issue.ResetURL,
		"expires":    issue.ExpiresAt,
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token and newPassword are required"})
		return
	}

	user, err := h.reset.ConsumeReset(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password updated successfully",
		"user":    toUserResponse(user),
	})
}

func (h HandlerSet) ListResetTokens(c *gin.Context) {
	tokens, err := h.reset.ListActiveTokens(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if tokens == nil {
		tokens = []store.ActiveToken{}
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}
