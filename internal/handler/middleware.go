package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/leadervibe/internal/db"
	"github.com/leadervibe/internal/logging"
)

const (
	RequestIDHeader = "X-Request-ID"

	sessionUserKey    = "user_id"
	currentUserCtxKey = "currentUser"
)

// RequestLogger 为每个请求分配 request id，并在结束后输出一条访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), requestID))

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logging.Ctx(c.Request.Context()).Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logging.Ctx(c.Request.Context()).Error()
		case status >= http.StatusBadRequest:
			event = logging.Ctx(c.Request.Context()).Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request completed")
	}
}

// AuthRequired 接受 bearer token 或后台会话，两者都没有时返回 401
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if token := bearerToken(c); token != "" {
			user, err := a.users.Authenticate(ctx, token)
			if err != nil {
				respondServiceError(c, err, "Authentication failed")
				return
			}
			c.Set(currentUserCtxKey, user)
			c.Next()
			return
		}

		session := sessions.Default(c)
		if userID, ok := session.Get(sessionUserKey).(uint); ok && userID > 0 {
			user, err := a.users.Active(ctx, userID)
			if err != nil {
				session.Clear()
				_ = session.Save()
				respondServiceError(c, err, "Authentication failed")
				return
			}
			c.Set(currentUserCtxKey, user)
			c.Next()
			return
		}

		respondError(c, http.StatusUnauthorized, "You are not logged in! Please log in to get access.")
	}
}

// AdminOnly 需挂在 AuthRequired 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != db.RoleAdmin {
			respondError(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *db.User {
	if value, ok := c.Get(currentUserCtxKey); ok {
		if user, ok := value.(*db.User); ok {
			return user
		}
	}
	return nil
}
