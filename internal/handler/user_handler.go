package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// GetMe 返回当前登录账号
func (a *API) GetMe(c *gin.Context) {
	respondData(c, http.StatusOK, gin.H{"user": currentUser(c)})
}

// UpdateMe 当前账号修改 name/email
func (a *API) UpdateMe(c *gin.Context) {
	fields, err := bindFields(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := a.users.UpdateMe(c.Request.Context(), currentUser(c).ID, fields)
	if err != nil {
		respondServiceError(c, err, "Failed to update account")
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": user})
}

// DeleteMe 停用当前账号并清除会话
func (a *API) DeleteMe(c *gin.Context) {
	if err := a.users.DeactivateMe(c.Request.Context(), currentUser(c).ID); err != nil {
		respondServiceError(c, err, "Failed to deactivate account")
		return
	}
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Status(http.StatusNoContent)
}

func (a *API) ListUsers(c *gin.Context) {
	users, err := a.users.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Failed to load users")
		return
	}
	respondList(c, "users", len(users), users)
}

func (a *API) GetUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := a.users.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "Failed to load user")
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": user})
}

func (a *API) UpdateUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}
	fields, err := bindFields(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := a.users.Update(c.Request.Context(), id, fields)
	if err != nil {
		respondServiceError(c, err, "Failed to update user")
		return
	}
	respondData(c, http.StatusOK, gin.H{"user": user})
}

func (a *API) DeleteUser(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := a.users.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "Failed to delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
