package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/studycycle/internal/handler"
	"github.com/studycycle/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionName          = "studycycle_session"
	defaultSessionSecret = "studycycle-dev-secret"
	sessionMaxAge        = 7 * 24 * 60 * 60
)

// Options 路由所需的外部依赖
type Options struct {
	SessionSecret   string
	Tokens          *service.TokenManager
	Logger          *zap.Logger
	DefaultLanguage string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handler.RequestID())
	r.Use(handler.RequestLogger(log.Named("http")))

	secret := strings.TrimSpace(opts.SessionSecret)
	if secret == "" {
		log.Warn("SESSION_SECRET not set, using development secret")
		secret = defaultSessionSecret
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	api := handler.NewAPI(gdb, handler.Options{
		Tokens:          opts.Tokens,
		Logger:          log,
		DefaultLanguage: opts.DefaultLanguage,
	})
	r.Use(api.LocaleMiddleware())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", api.Register)
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
	}

	protected := r.Group("/api")
	protected.Use(api.AuthRequired())
	{
		protected.GET("/me", api.Me)

		protected.GET("/subjects", api.ListSubjects)
		protected.POST("/subjects", api.CreateSubject)
		protected.DELETE("/subjects/:id", api.DeleteSubject)

		protected.GET("/overview", api.GetOverview)

		protected.GET("/cycles", api.ListCycles)
		protected.POST("/cycles", api.CreateCycle)
		protected.POST("/cycles/reset", api.ResetCycle)
		protected.GET("/cycles/active/badge.png", api.ActiveCycleBadge)
		protected.GET("/cycles/:id/export", api.ExportCycle)

		protected.PATCH("/assignments/:id", api.AdjustAssignmentHours)
	}

	return r
}
