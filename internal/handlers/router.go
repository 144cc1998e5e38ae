package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NewEdu-F-2025/platform-service/internal/auth"
	"github.com/NewEdu-F-2025/platform-service/internal/models"
	"github.com/NewEdu-F-2025/platform-service/internal/services"
	"github.com/NewEdu-F-2025/platform-service/internal/utils"
)

type HandlerManager struct {
	authHandler     *AuthHandler
	profileHandler  *ProfileHandler
	schoolHandler   *SchoolHandler
	scheduleHandler *ScheduleHandler
	blockingHandler *BlockingHandler
	exportHandler   *ExportHandler
	authMiddleware  *JWTAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	issuer *auth.TokenIssuer,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:     NewAuthHandler(serviceManager.Auth(), logger),
		profileHandler:  NewProfileHandler(serviceManager.Profile(), logger),
		schoolHandler:   NewSchoolHandler(serviceManager.School(), logger),
		scheduleHandler: NewScheduleHandler(serviceManager.Schedule(), logger),
		blockingHandler: NewBlockingHandler(serviceManager.Blocking(), logger),
		exportHandler:   NewExportHandler(serviceManager.Export(), logger),
		authMiddleware:  NewJWTAuthMiddleware(issuer),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")

	// Public authentication routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/check-phone", hm.authHandler.CheckPhone)
		authRoutes.POST("/login", hm.authHandler.Login)
		authRoutes.POST("/register/student", hm.authHandler.RegisterStudent)
		authRoutes.POST("/register/teacher", hm.authHandler.RegisterTeacher)
		authRoutes.POST("/register/admin", hm.authHandler.RegisterAdmin)
	}

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Own profile
		authed.GET("/users/me", hm.profileHandler.GetMe)
		authed.PUT("/students/update-school", hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent), hm.profileHandler.UpdateStudentSchool)
		authed.PUT("/teachers/me", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher), hm.profileHandler.UpdateTeacher)
		authed.PUT("/admins/me", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.profileHandler.UpdateAdmin)

		// School registry - read access for all authenticated users
		schools := authed.Group("/schools")
		{
			schools.GET("", hm.schoolHandler.ListSchools)
			schools.GET("/:id", hm.schoolHandler.GetSchool)
			schools.GET("/:id/schedule", hm.scheduleHandler.GetMonthSchedule)
			schools.GET("/:id/blocking/rules", hm.blockingHandler.ListRules)
		}

		// Blocking endpoints for student devices
		blocking := authed.Group("/blocking")
		blocking.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleStudent))
		{
			blocking.GET("/status", hm.blockingHandler.GetStatus)
			blocking.GET("/school-schedule", hm.scheduleHandler.GetMySchedule)
			blocking.POST("/emergency-exceptions", hm.blockingHandler.RequestException)
			blocking.GET("/emergency-exceptions", hm.blockingHandler.ListMyExceptions)
		}

		// Administration
		admin := authed.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.POST("/schools", hm.schoolHandler.CreateSchool)
			admin.PUT("/schools/:id", hm.schoolHandler.UpdateSchool)
			admin.DELETE("/schools/:id", hm.schoolHandler.DeleteSchool)

			admin.PUT("/schools/:id/schedule/windows", hm.scheduleHandler.ReplaceWindows)
			admin.POST("/schools/:id/schedule/closures", hm.scheduleHandler.AddClosure)
			admin.DELETE("/schools/:id/schedule/closures/:closure_id", hm.scheduleHandler.RemoveClosure)

			admin.POST("/schools/:id/blocking/rules", hm.blockingHandler.CreateRule)
			admin.PUT("/blocking/rules/:rule_id", hm.blockingHandler.UpdateRule)
			admin.DELETE("/blocking/rules/:rule_id", hm.blockingHandler.DeleteRule)

			admin.GET("/blocking/emergency-exceptions", hm.blockingHandler.ListPendingExceptions)
			admin.POST("/blocking/emergency-exceptions/:exception_id/review", hm.blockingHandler.ReviewException)
			admin.GET("/blocking/emergency-exceptions/:exception_id/logs", hm.blockingHandler.GetExceptionLogs)

			admin.GET("/schools/:id/students/export", hm.exportHandler.ExportSchoolStudents)
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "platform-service",
	})
}
