package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/NaufalH27/inquran-be/internal/health"
	"github.com/NaufalH27/inquran-be/internal/http/handler"
	"github.com/NaufalH27/inquran-be/internal/http/middleware"
	"github.com/NaufalH27/inquran-be/internal/http/request"
	"github.com/NaufalH27/inquran-be/internal/http/response"
	"github.com/NaufalH27/inquran-be/internal/security"
)

const (
	jsonBodyLimit  = 1 << 20
	photoBodyLimit = request.MaxPhotoBytes + 64<<10
)

type Dependencies struct {
	AuthHandler *handler.AuthHandler
	UserHandler *handler.UserHandler
	JWTManager  *security.JWTManager
	APIKey      string
	// APIKeyBypass disables the API key guard, as in development.
	APIKeyBypass bool
	// UploadDir, when set, is served read-only under /uploads/photos/.
	UploadDir      string
	Readiness      *health.ProbeRunner
	EnableOTelHTTP bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "dependencies are not ready", map[string]any{"checks": results})
	})

	if dep.UploadDir != "" {
		files := http.StripPrefix("/uploads/photos/", http.FileServer(http.Dir(dep.UploadDir)))
		r.Get("/uploads/photos/*", files.ServeHTTP)
	}

	apiKey := middleware.APIKey(dep.APIKey, dep.APIKeyBypass)
	auth := middleware.AuthMiddleware(dep.JWTManager)

	r.Route("/auth", func(r chi.Router) {
		r.Use(apiKey)
		r.Use(middleware.BodyLimit(jsonBodyLimit))
		r.Post("/login", dep.AuthHandler.Login)
		r.Post("/register", dep.AuthHandler.Register)
		r.Post("/google", dep.AuthHandler.Google)
		r.Post("/refresh-token", dep.AuthHandler.Refresh)
		r.Post("/logout", dep.AuthHandler.Logout)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(apiKey)
		r.Use(auth)
		r.With(middleware.BodyLimit(photoBodyLimit)).Patch("/profile/me/photo", dep.UserHandler.UpdatePhoto)
		r.Group(func(r chi.Router) {
			r.Use(middleware.BodyLimit(jsonBodyLimit))
			r.Get("/profile/me", dep.UserHandler.Me)
			r.Put("/profile/me", dep.UserHandler.UpdateProfile)
			r.Patch("/profile/me/fullname", dep.UserHandler.UpdateFullName)
			r.Put("/password/change", dep.UserHandler.ChangePassword)
			r.Put("/bind/password", dep.UserHandler.BindPassword)
			r.Put("/bind/oauth/google", dep.UserHandler.BindGoogle)
			r.Post("/favorite/add", dep.UserHandler.AddFavorite)
			r.Post("/favorite/delete", dep.UserHandler.DeleteFavorite)
			r.Get("/favorites", dep.UserHandler.ListFavorites)
			r.Get("/sessions", dep.UserHandler.Sessions)
			r.Delete("/sessions/{session_id}", dep.UserHandler.RevokeSession)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
