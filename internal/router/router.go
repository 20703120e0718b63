package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kanasu-ecd/kanasu-go-api/internal/config"
	"github.com/kanasu-ecd/kanasu-go-api/internal/handler"
	"github.com/kanasu-ecd/kanasu-go-api/internal/middleware"
	"github.com/kanasu-ecd/kanasu-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	TeacherAuthHandler *handler.TeacherAuthHandler
	AnganwadiHandler   *handler.AnganwadiHandler
	TeacherHandler     *handler.TeacherHandler
	CohortHandler      *handler.CohortHandler
	StudentHandler     *handler.StudentHandler
	TopicHandler       *handler.TopicHandler
	AssessmentHandler  *handler.AssessmentHandler
	ResponseHandler    *handler.ResponseHandler
	EvaluationHandler  *handler.EvaluationHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public authentication endpoints. OTP requests are rate limited per IP.
	if deps.AuthHandler != nil {
		authGroup := api.Group("/auth")
		deps.AuthHandler.Register(authGroup)
	}
	if deps.TeacherAuthHandler != nil {
		teacherAuth := api.Group("/auth/teacher", middleware.RateLimit("teacher-auth", 20, time.Minute))
		deps.TeacherAuthHandler.Register(teacherAuth)

		teacherProfile := api.Group("/auth/teacher", jwtMiddleware, middleware.RequireRole("teacher"))
		deps.TeacherAuthHandler.RegisterProtected(teacherProfile)
	}

	// Administrative registries
	if deps.AnganwadiHandler != nil {
		deps.AnganwadiHandler.Register(api.Group("/anganwadis", jwtMiddleware))
	}
	if deps.TeacherHandler != nil {
		deps.TeacherHandler.Register(api.Group("/teachers", jwtMiddleware))
	}
	if deps.CohortHandler != nil {
		deps.CohortHandler.Register(api.Group("/cohorts", jwtMiddleware))
	}
	if deps.StudentHandler != nil {
		deps.StudentHandler.Register(api.Group("/students", jwtMiddleware))
	}

	// Curriculum content
	if deps.TopicHandler != nil {
		deps.TopicHandler.Register(api.Group("/topics", jwtMiddleware))
	}

	// Assessment lifecycle & scoring
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(api.Group("/assessments", jwtMiddleware))
	}
	if deps.ResponseHandler != nil {
		deps.ResponseHandler.Register(api.Group("/responses", jwtMiddleware))
	}
	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(api.Group("/evaluations", jwtMiddleware))
	}
}
