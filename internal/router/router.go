package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/leadervibe/internal/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options 描述路由层的可配置项
type Options struct {
	SessionSecret  string
	AllowedOrigins []string
	SecureCookie   bool
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("leadervibe_session", store))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Server is running!"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
		auth.POST("/forgotPassword", api.ForgotPassword)
		auth.PATCH("/resetPassword/:token", api.ResetPassword)
	}

	// 公开接口
	v1.POST("/booking", api.CreateBooking)
	v1.POST("/contact", api.CreateContact)
	v1.GET("/events/speakers", api.ListSpeakers)
	v1.GET("/events/speakers/:speakerId", api.GetSpeaker)
	v1.GET("/about/profiles", api.ListProfiles)
	v1.GET("/about/profiles/:profileId", api.GetProfile)
	v1.GET("/gallery", api.GetGallery)

	// 需要登录
	member := v1.Group("")
	member.Use(api.AuthRequired())
	{
		member.GET("/users/me", api.GetMe)
		member.PATCH("/users/updateMe", api.UpdateMe)
		member.DELETE("/users/deleteMe", api.DeleteMe)

		member.POST("/emails/custom", api.SendCustomEmail)
		member.POST("/emails/welcome", api.SendWelcomeEmail)
		member.POST("/emails/password-reset", api.SendPasswordResetEmail)
	}

	// 仅管理员
	admin := v1.Group("")
	admin.Use(api.AuthRequired(), handler.AdminOnly())
	{
		admin.GET("/users", api.ListUsers)
		admin.GET("/users/:id", api.GetUser)
		admin.PATCH("/users/:id", api.UpdateUser)
		admin.DELETE("/users/:id", api.DeleteUser)

		admin.GET("/booking", api.ListBookings)
		admin.GET("/booking/:id", api.GetBooking)
		admin.PATCH("/booking/:id/status", api.UpdateBookingStatus)
		admin.DELETE("/booking/:id", api.DeleteBooking)

		admin.GET("/contact", api.ListContacts)
		admin.GET("/contact/:id", api.GetContact)
		admin.DELETE("/contact/:id", api.DeleteContact)

		admin.PATCH("/events/speakers/:speakerId", api.UpdateSpeaker)

		admin.POST("/about/profiles", api.CreateProfile)
		admin.PATCH("/about/profiles/:profileId", api.UpdateProfile)

		admin.PATCH("/gallery", api.UpdateGallery)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "fail",
			"message": "Can't find " + c.Request.URL.Path + " on this server!",
		})
	})

	return r
}

// corsConfig 未配置来源时允许全部来源，此时不携带凭据
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", handler.RequestIDHeader},
		ExposeHeaders: []string{handler.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
