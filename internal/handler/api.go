package handler

import (
	"github.com/studycycle/internal/locale"
	"github.com/studycycle/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db              *gorm.DB
	auth            *service.AuthService
	tokens          *service.TokenManager
	subjects        *service.SubjectService
	cycles          *service.CycleManager
	exports         *service.ExportService
	log             *zap.Logger
	defaultLanguage string
}

// Options 控制 NewAPI 的可选参数
type Options struct {
	Tokens          *service.TokenManager
	Logger          *zap.Logger
	DefaultLanguage string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	language := locale.NormalizeLanguage(opts.DefaultLanguage)
	if language == "" {
		language = locale.LanguagePortuguese
	}

	store := service.NewGormStore(gdb)
	cycles := service.NewCycleManager(store, log.Named("cycles"))

	return &API{
		db:              gdb,
		auth:            service.NewAuthService(gdb),
		tokens:          opts.Tokens,
		subjects:        service.NewSubjectService(store, log.Named("subjects")),
		cycles:          cycles,
		exports:         service.NewExportService(cycles, log.Named("export")),
		log:             log,
		defaultLanguage: language,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
