package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/paperdesk/internal/config"
	"github.com/stemsi/paperdesk/internal/handler"
	"github.com/stemsi/paperdesk/internal/middleware"
	"github.com/stemsi/paperdesk/internal/remote"
	"github.com/stemsi/paperdesk/internal/response"
	"github.com/stemsi/paperdesk/internal/service"
)

// catalogMaxAge is how long clients may cache the lookup lists, in seconds.
const catalogMaxAge = 3600

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Paper     *handler.PaperHandler
	Export    *handler.ExportHandler
	FormState *handler.FormStateHandler
	Catalog   *handler.CatalogHandler
	System    *handler.SystemHandler
}

// Options tunes the limits applied by SetupRouter.
type Options struct {
	// GenerateLimit is the number of generation requests a school may make per GenerateWindow.
	GenerateLimit  int
	GenerateWindow time.Duration
}

// DefaultOptions are the limits used by the server.
var DefaultOptions = Options{GenerateLimit: 30, GenerateWindow: time.Hour}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	sessions *service.SessionService,
	handlers *Handlers,
	cfg *config.Config,
	opts Options,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	api := router.Group("/api/v1")

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	api.GET("/health", middleware.NoStore(), handlers.System.Health)

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := api.Group("/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated session routes
		auth.POST("/logout", middleware.RequireSession(sessions), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireSession(sessions), handlers.Auth.Me)
		auth.POST("/verify", middleware.RequireSession(sessions), handlers.Auth.Verify)
	}

	// ─── 2. Session Group ──────────────────────────────────────────────
	protected := api.Group("")
	protected.Use(middleware.RequireSession(sessions))

	catalog := protected.Group("/catalog")
	catalog.Use(middleware.CacheControl(catalogMaxAge))
	{
		catalog.GET("/boards", handlers.Catalog.Serve(remote.CatalogBoards))
		catalog.GET("/subjects", handlers.Catalog.Serve(remote.CatalogSubjects))
		catalog.GET("/question-types", handlers.Catalog.Serve(remote.CatalogQuestionTypes))
	}

	forms := protected.Group("/form-state")
	forms.Use(middleware.NoStore())
	{
		forms.GET("", handlers.FormState.Get)
		forms.PUT("", handlers.FormState.Put)
		forms.DELETE("", handlers.FormState.Delete)
	}

	generateLimiter := middleware.NewRateLimiter(opts.GenerateLimit, opts.GenerateWindow)

	papers := protected.Group("/papers")
	papers.Use(middleware.NoStore())
	{
		papers.POST("/generate", generateLimiter.Middleware(), handlers.Paper.Generate)
		papers.GET("", handlers.Paper.List)
		papers.GET("/storage-info", handlers.Paper.StorageInfo)
		papers.GET("/export", handlers.Paper.Export)

		papers.GET("/:id", handlers.Paper.Get)
		papers.DELETE("/:id", handlers.Paper.Delete)
		papers.POST("/:id/save", handlers.Paper.Save)

		papers.GET("/:id/selection", handlers.Paper.Selection)
		papers.POST("/:id/selection", handlers.Paper.ToggleSelection)
		papers.DELETE("/:id/selection", handlers.Paper.ClearSelection)
		papers.POST("/:id/replace-selected", handlers.Paper.ReplaceSelected)

		papers.POST("/:id/sections/:section/questions/:question/replace", handlers.Paper.ReplaceQuestion)
		papers.PUT("/:id/sections/:section/questions/:question", handlers.Paper.EditQuestion)

		papers.GET("/:id/answer-key", handlers.Paper.AnswerKey)
		papers.GET("/:id/answer-key/pdf", handlers.Export.AnswerKeyPDF)

		papers.POST("/:id/print", handlers.Export.Print)
		papers.POST("/:id/pdf", handlers.Export.PDF)
		papers.POST("/:id/text", handlers.Export.Text)
	}

	// ─── 3. Admin Group (Bulk and Diagnostics) ─────────────────────────
	admin := protected.Group("")
	admin.Use(middleware.RequireAdmin(), middleware.NoStore())
	{
		admin.POST("/papers/import", handlers.Paper.Import)
		admin.DELETE("/papers", handlers.Paper.ClearAll)
		admin.GET("/system/metrics", handlers.System.MetricsSSE)
	}

	return router
}
