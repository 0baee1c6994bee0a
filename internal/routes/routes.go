package routes

import (
	"net/http"

	"github.com/artblossom/artblossom/internal/app"
	"github.com/artblossom/artblossom/internal/handler"
	"github.com/artblossom/artblossom/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	image := handler.NewImageHandler(app.ImageService, app.Cfg.MaxUploadSize)
	generate := handler.NewGenerateHandler(app.GenerateService)

	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /health", health.Health)

	// Prompt suggestions
	mux.HandleFunc("GET /api/prompts/suggestions", generate.Suggestions)

	// Generation proxy (rate limited - every call spends inference credit)
	rateLimiter := middleware.RateLimitGenerate()
	mux.HandleFunc("POST /api/generate", rateLimiter(middleware.RequireAuth(generate.Generate)))

	// Persistence gateway
	mux.HandleFunc("POST /api/images/save", middleware.RequireAuth(image.Save))
	mux.HandleFunc("GET /api/images/user/{userId}", middleware.RequireAuth(image.ListByUser))

	// Global middleware
	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.FrontendOrigin),
		middleware.Config(app.Cfg),
		middleware.AuthMiddleware(app.AuthService),
	)
}
