package routes

import (
	"schoolrecords_go/controllers"
	"schoolrecords_go/middleware"
	"schoolrecords_go/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, healthService *services.HealthService) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	zoneController := &controllers.ZoneController{}
	programController := &controllers.ProgramController{}
	scheduleController := &controllers.ScheduleController{}
	enrollmentController := &controllers.EnrollmentController{}
	canceledDateController := &controllers.CanceledDateController{}
	attendanceController := &controllers.AttendanceController{}
	sessionController := &controllers.SessionController{}
	schoolController := &controllers.SchoolController{}
	studentController := &controllers.StudentController{}
	partnerController := &controllers.PartnerController{}
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(healthService)

	// API group
	api := app.Group("/api")

	// Health endpoint (no authentication required)
	api.Get("/health", healthController.GetHealthStatus)

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Post("/auth/logout", authController.Logout)
	protected.Post("/auth/refresh", authController.RefreshToken)
	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)

	// User management routes
	users := protected.Group("/users")
	users.Get("/", middleware.RequireSuperuser(), userController.GetUsers)
	users.Post("/", middleware.RequireSuperuser(), authController.Register)
	users.Put("/:id/status", middleware.RequireSuperuser(), userController.UpdateUserStatus)
	// Any user may inspect and grant within their own scope
	users.Get("/grantable", userController.GetGrantable)
	users.Get("/:id/permissions", userController.GetUserPermissions)
	users.Put("/:id/permissions", userController.UpdateUserPermissions)

	// Records hierarchy: zone > program > schedule, addressed by natural keys
	zones := protected.Group("/zones")
	zones.Get("/", zoneController.GetZones)
	zones.Post("/", zoneController.CreateZone)
	zones.Get("/:zone_name", zoneController.GetZone)
	zones.Put("/:zone_name", zoneController.UpdateZone)
	zones.Delete("/:zone_name", zoneController.DeleteZone)

	programs := zones.Group("/:zone_name/programs")
	programs.Get("/", programController.GetPrograms)
	programs.Post("/", programController.CreateProgram)
	programs.Get("/:program_name", programController.GetProgram)
	programs.Put("/:program_name", programController.UpdateProgram)
	programs.Delete("/:program_name", programController.DeleteProgram)

	schedules := programs.Group("/:program_name/schedules")
	schedules.Get("/", scheduleController.GetSchedules)
	schedules.Post("/", scheduleController.CreateSchedule)
	schedules.Get("/:session_name", scheduleController.GetSchedule)
	schedules.Put("/:session_name", scheduleController.UpdateSchedule)
	schedules.Delete("/:session_name", scheduleController.DeleteSchedule)

	enrollments := schedules.Group("/:session_name/enrollments")
	enrollments.Get("/", enrollmentController.GetEnrollments)
	enrollments.Post("/", enrollmentController.CreateEnrollment)
	enrollments.Put("/:student_id", enrollmentController.UpdateEnrollment)
	enrollments.Delete("/:student_id", enrollmentController.DeleteEnrollment)

	canceled := schedules.Group("/:session_name/canceled-dates")
	canceled.Get("/", canceledDateController.GetCanceledDates)
	canceled.Post("/", canceledDateController.CreateCanceledDate)
	canceled.Delete("/:date", canceledDateController.DeleteCanceledDate)

	attendanceGroup := schedules.Group("/:session_name/attendance")
	attendanceGroup.Get("/export", attendanceController.ExportAttendance)
	attendanceGroup.Get("/:date", attendanceController.GetAttendance)
	attendanceGroup.Post("/:date", attendanceController.SubmitAttendance)

	// Side entities managed outside the hierarchy
	sessions := protected.Group("/sessions")
	sessions.Get("/", sessionController.GetSessions)
	sessions.Get("/:id", sessionController.GetSession)
	sessions.Post("/", sessionController.CreateSession)
	sessions.Put("/:id", sessionController.UpdateSession)
	sessions.Delete("/:id", sessionController.DeleteSession)

	schools := protected.Group("/schools")
	schools.Get("/", schoolController.GetSchools)
	schools.Get("/:id", schoolController.GetSchool)
	schools.Post("/", schoolController.CreateSchool)
	schools.Put("/:id", schoolController.UpdateSchool)
	schools.Delete("/:id", schoolController.DeleteSchool)

	students := protected.Group("/students")
	students.Get("/", studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Post("/", studentController.CreateStudent)
	students.Put("/:id", studentController.UpdateStudent)
	students.Delete("/:id", studentController.DeleteStudent)

	partners := protected.Group("/partners")
	partners.Get("/", partnerController.GetPartners)
	partners.Get("/:id", partnerController.GetPartner)
	partners.Post("/", partnerController.CreatePartner)
	partners.Put("/:id", partnerController.UpdatePartner)
	partners.Delete("/:id", partnerController.DeletePartner)

	// Activity log routes (superusers only)
	logs := protected.Group("/logs", middleware.RequireSuperuser())
	logs.Get("/", logController.GetLogs)
	logs.Get("/archives", logController.GetLogArchives)
	logs.Get("/archives/:id/download", logController.DownloadLogArchive)
	logs.Post("/flush", logController.FlushCachedLogs)
	logs.Get("/:id", logController.GetLog)
}
