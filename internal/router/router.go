package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/handler"
	"github.com/noah-isme/school-portal-api/internal/middleware"
	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-portal-api/pkg/middleware/requestid"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth          *handler.AuthHandler
	Registration  *handler.RegistrationHandler
	Students      *handler.StudentHandler
	People        *handler.PeopleHandler
	Classes       *handler.ClassHandler
	Attendance    *handler.AttendanceHandler
	Documents     *handler.DocumentHandler
	Inbox         *handler.InboxHandler
	SchoolUpdates *handler.SchoolUpdateHandler
	Ops           *handler.MetricsHandler
}

// Options configures cross-cutting middleware.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Logger         *zap.Logger
	Metrics        middleware.RequestObserver
	Auth           middleware.TokenAuthenticator
}

// New builds the gin engine with every route registered.
func New(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(opts.Logger))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(opts.Metrics))

	r.GET("/health", h.Ops.Health)
	r.GET("/ready", h.Ops.Ready)
	r.GET("/metrics", h.Ops.Prometheus)
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)
	id := middleware.UUIDParam("id")
	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/registration-request", h.Registration.Submit)
	api.GET("/updates", h.SchoolUpdates.List)
	api.GET("/documents/:id/download", id, h.Documents.Download)

	secured := api.Group("", middleware.JWT(opts.Auth))
	secured.GET("/auth/me", h.Auth.Me)

	registrations := secured.Group("/registration-requests", admin)
	registrations.GET("", h.Registration.List)
	registrations.GET("/export", h.Registration.Export)
	registrations.GET("/:id", id, h.Registration.Get)
	registrations.PATCH("/:id/approve", id, h.Registration.Approve)
	registrations.PATCH("/:id/reject", id, h.Registration.Reject)

	secured.GET("/users", admin, h.People.ListUsers)
	secured.GET("/users/:id", id, admin, h.People.GetUser)

	students := secured.Group("/students")
	students.GET("", staff, h.Students.List)
	students.GET("/:id", id, staff, h.Students.Get)
	students.POST("", admin, h.Students.Create)
	students.PUT("/:id", id, admin, h.Students.Update)
	students.DELETE("/:id", id, admin, h.Students.Delete)

	parents := secured.Group("/parents")
	parents.GET("", admin, h.People.ListParents)
	parents.GET("/me/students", middleware.RequireRoles(models.RoleParent), h.People.MyChildren)
	parents.GET("/:id", id, middleware.RBAC(string(models.RoleAdmin), middleware.Self), h.People.GetParent)

	teachers := secured.Group("/teachers")
	teachers.GET("", admin, h.People.ListTeachers)
	teachers.GET("/:id", id, h.People.GetTeacher)
	teachers.PUT("/:id", id, admin, h.People.UpdateTeacher)

	classes := secured.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.GET("/:id", id, h.Classes.Get)
	classes.GET("/:id/students", id, staff, h.Classes.Students)
	classes.POST("", admin, h.Classes.Create)
	classes.PUT("/:id", id, admin, h.Classes.Update)
	classes.DELETE("/:id", id, admin, h.Classes.Delete)

	secured.POST("/attendance", staff, h.Attendance.Record)
	secured.GET("/attendance", staff, h.Attendance.List)

	documents := secured.Group("/documents")
	documents.POST("", h.Documents.Upload)
	documents.GET("", h.Documents.List)
	documents.GET("/:id", id, h.Documents.Get)
	documents.DELETE("/:id", id, h.Documents.Delete)

	messages := secured.Group("/messages")
	messages.POST("", h.Inbox.SendMessage)
	messages.GET("/inbox", h.Inbox.Inbox)
	messages.GET("/sent", h.Inbox.Sent)
	messages.PATCH("/:id/read", id, h.Inbox.MarkMessageRead)

	secured.POST("/updates", staff, h.SchoolUpdates.Create)
	secured.DELETE("/updates/:id", id, admin, h.SchoolUpdates.Delete)

	secured.GET("/notifications", h.Inbox.Notifications)
	secured.PATCH("/notifications/:id/read", id, h.Inbox.MarkNotificationRead)

	return r
}
