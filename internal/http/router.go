package http

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/classroomhq/school-api/internal/auth"
	"github.com/classroomhq/school-api/internal/config"
	"github.com/classroomhq/school-api/internal/course"
	"github.com/classroomhq/school-api/internal/httputil"
	"github.com/classroomhq/school-api/internal/logging"
	"github.com/classroomhq/school-api/internal/student"
	"github.com/classroomhq/school-api/internal/teacher"
)

// Handlers groups the resource handlers mounted by the router
type Handlers struct {
	Auth     *auth.Handler
	Students *student.Handler
	Courses  *course.Handler
	Teachers *teacher.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, handlers Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)

	// Swagger UI - only in development
	// Production builds will not have this route at all
	if cfg.Server.IsDevelopment() {
		log.Println("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		log.Println("Swagger UI disabled (production mode)")
	}

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handlers.Auth.Register)
		r.Post("/login", handlers.Auth.Login)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Get("/auth/users", handlers.Auth.ListUsers)

		r.Route("/students", func(r chi.Router) {
			r.Get("/", handlers.Students.List)
			r.Post("/", handlers.Students.Create)
			r.Get("/{id}", handlers.Students.Get)
			r.Put("/{id}", handlers.Students.Update)
			r.Delete("/{id}", handlers.Students.Delete)
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", handlers.Courses.List)
			r.Post("/", handlers.Courses.Create)
			r.Get("/{id}", handlers.Courses.Get)
			r.Put("/{id}", handlers.Courses.Update)
			r.Delete("/{id}", handlers.Courses.Delete)
		})

		r.Route("/teachers", func(r chi.Router) {
			r.Get("/", handlers.Teachers.List)
			r.Post("/", handlers.Teachers.Create)
			r.Get("/{id}", handlers.Teachers.Get)
			r.Put("/{id}", handlers.Teachers.Update)
			r.Delete("/{id}", handlers.Teachers.Delete)
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
