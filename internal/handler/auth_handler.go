package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/service"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordPayload struct {
	Email string `json:"email"`
}

type resetPasswordPayload struct {
	Password string `json:"password"`
}

// Login 校验账号密码，返回 token 并写入会话
func (a *API) Login(c *gin.Context) {
	var req loginPayload
	if !bindJSON(c, &req, "Please provide email and password") {
		return
	}

	result, err := a.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "Login failed")
		return
	}
	a.startSession(c, result)
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("failed to clear session")
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// ForgotPassword 发送重置密码邮件
func (a *API) ForgotPassword(c *gin.Context) {
	var req forgotPasswordPayload
	if !bindJSON(c, &req, "Please provide your email address") {
		return
	}

	resetBase := a.publicURL(c) + "/api/v1/auth/resetPassword"
	if err := a.users.ForgotPassword(c.Request.Context(), req.Email, resetBase); err != nil {
		respondServiceError(c, err, "Failed to process password reset")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Token sent to email!"})
}

// ResetPassword 使用邮件中的令牌设置新密码
func (a *API) ResetPassword(c *gin.Context) {
	var req resetPasswordPayload
	if !bindJSON(c, &req, "Password must be at least 8 characters long") {
		return
	}

	result, err := a.users.ResetPassword(c.Request.Context(), c.Param("token"), req.Password)
	if err != nil {
		respondServiceError(c, err, "Failed to reset password")
		return
	}
	a.startSession(c, result)
}

func (a *API) startSession(c *gin.Context, result *service.Session) {
	session := sessions.Default(c)
	session.Set(sessionUserKey, result.User.ID)
	if err := session.Save(); err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("failed to save session")
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"data":      gin.H{"user": result.User},
	})
}
