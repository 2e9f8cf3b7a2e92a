package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/payload"
	"github.com/leadervibe/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	state := "fail"
	if status >= http.StatusInternalServerError {
		state = "error"
	}
	c.AbortWithStatusJSON(status, gin.H{"status": state, "message": message})
}

func respondData(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}

func respondList(c *gin.Context, key string, count int, items any) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": count, "data": gin.H{key: items}})
}

func respondMessage(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"status": "success", "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondServiceError maps service errors onto HTTP statuses. Unknown errors
// are logged and answered with fallback so internals never reach clients.
func respondServiceError(c *gin.Context, err error, fallback string) {
	message := fallback
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, message)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, message)
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, message)
	case errors.Is(err, service.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, message)
	case errors.Is(err, service.ErrUpstream):
		logging.Ctx(c.Request.Context()).Error().Err(err).Msg(message)
		respondError(c, http.StatusBadGateway, message)
	default:
		_ = c.Error(err)
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// bindFields reads a request body into loosely typed fields. Multipart and
// urlencoded forms keep their raw string values, JSON bodies keep their
// decoded types. An empty body yields empty fields.
func bindFields(c *gin.Context) (payload.Fields, error) {
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return payload.FromForm(form.Value), nil
	case gin.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		return payload.FromForm(c.Request.PostForm), nil
	default:
		fields := payload.Fields{}
		if err := c.ShouldBindJSON(&fields); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return fields, nil
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

// publicURL prefers the configured base URL. The request host is only
// trusted when none is configured, which config allows outside release mode.
func (a *API) publicURL(c *gin.Context) string {
	if a.baseURL != "" {
		return a.baseURL
	}
	return requestBaseURL(c)
}

// requestBaseURL rebuilds the externally visible scheme and host.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if forwarded := c.GetHeader("X-Forwarded-Proto"); forwarded != "" {
		scheme = strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	return scheme + "://" + c.Request.Host
}
