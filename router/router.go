package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"hrms-backend/config"
	"hrms-backend/config/middleware"
	_ "hrms-backend/docs"
	"hrms-backend/handlers"
	"hrms-backend/models"
	"hrms-backend/pkg/mailer"
	"hrms-backend/pkg/paseto"
	"hrms-backend/pkg/payroll"
	"hrms-backend/pkg/token"
	"hrms-backend/repository"
)

// Dependencies is everything the HTTP layer needs. Tests fill it with in-memory repositories.
type Dependencies struct {
	Users          repository.UserRepository
	Employees      repository.EmployeeRepository
	Departments    repository.DepartmentRepository
	Attendance     repository.AttendanceRepository
	LeaveRequests  repository.LeaveRequestRepository
	LeaveBalances  repository.LeaveBalanceRepository
	Payrolls       repository.PayrollRepository
	Notifications  repository.NotificationRepository
	ExitInterviews repository.ExitInterviewRepository
	Attachments    repository.AttachmentStore

	Tokens     *token.Manager
	Challenges *paseto.Maker
	Mailer     mailer.Mailer

	AppName       string
	Work          config.WorkConfig
	Rates         payroll.Rates
	UploadLimitMB int
}

// NewMongoDependencies wires the Mongo-backed repositories. MongoConnect must have been called.
func NewMongoDependencies(cfg *config.AppConfig, tokens *token.Manager, challenges *paseto.Maker, mail mailer.Mailer) Dependencies {
	return Dependencies{
		Users:          repository.NewUserRepository(),
		Employees:      repository.NewEmployeeRepository(),
		Departments:    repository.NewDepartmentRepository(),
		Attendance:     repository.NewAttendanceRepository(),
		LeaveRequests:  repository.NewLeaveRequestRepository(),
		LeaveBalances:  repository.NewLeaveBalanceRepository(),
		Payrolls:       repository.NewPayrollRepository(),
		Notifications:  repository.NewNotificationRepository(),
		ExitInterviews: repository.NewExitInterviewRepository(),
		Attachments:    repository.NewAttachmentStore(),

		Tokens:     tokens,
		Challenges: challenges,
		Mailer:     mail,

		AppName:       cfg.AppName,
		Work:          cfg.Work,
		Rates:         payroll.Rates{HRA: cfg.Pay.HRA, PF: cfg.Pay.PF, Tax: cfg.Pay.Tax},
		UploadLimitMB: cfg.UploadLimitMB,
	}
}

func SetupRoutes(app *fiber.App, d Dependencies) {
	notifier := handlers.NewNotifier(d.Notifications, d.Users)

	authHandler := handlers.NewAuthHandler(d.Users, d.Employees, d.Tokens, d.Challenges, d.Mailer, d.AppName)
	userHandler := handlers.NewUserHandler(d.Users, d.Employees)
	employeeHandler := handlers.NewEmployeeHandler(d.Employees, d.Departments, d.Users, d.LeaveBalances)
	deptHandler := handlers.NewDepartmentHandler(d.Departments, d.Employees)
	attendanceHandler := handlers.NewAttendanceHandler(d.Attendance, d.Employees, d.Work)
	leaveHandler := handlers.NewLeaveRequestHandler(d.LeaveRequests, d.LeaveBalances, d.Attendance, d.Employees, d.Attachments, notifier, d.UploadLimitMB, d.Work.Location)
	fileHandler := handlers.NewFileHandler(d.Attachments)
	payrollHandler := handlers.NewPayrollHandler(d.Payrolls, d.Employees, d.Attendance, notifier, d.Rates)
	notificationHandler := handlers.NewNotificationHandler(d.Notifications, d.Users)
	exitHandler := handlers.NewExitInterviewHandler(d.ExitInterviews, d.Employees, notifier)
	reportHandler := handlers.NewReportHandler(d.Employees, d.Departments, d.Attendance, d.LeaveRequests, d.Payrolls, d.Work.Location)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": d.AppName + " API",
			"status":  "running",
			"docs":    "/docs/index.html",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})
	app.Get("/docs/*", swagger.HandlerDefault)

	api := app.Group("/api")
	auth := middleware.AuthMiddleware(d.Tokens, d.Users)
	hrStaff := middleware.RequireRoles(models.HRStaffRoles...)
	reviewers := middleware.RequireRoles(models.ReviewerRoles...)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/mfa/verify", authHandler.VerifyMFA)
	authGroup.Post("/mfa/resend", authHandler.ResendMFACode)
	authGroup.Get("/me", auth, authHandler.Me)
	authGroup.Post("/change-password", auth, authHandler.ChangePassword)
	authGroup.Post("/logout", auth, authHandler.Logout)
	authGroup.Post("/mfa/totp/setup", auth, authHandler.SetupTOTP)
	authGroup.Post("/mfa/totp/enable", auth, authHandler.EnableTOTP)
	authGroup.Post("/mfa/email/enable", auth, authHandler.EnableEmailMFA)
	authGroup.Post("/mfa/disable", auth, authHandler.DisableMFA)

	users := api.Group("/users", auth, adminOnly)
	users.Get("/", userHandler.GetAllUsers)
	users.Post("/", userHandler.CreateUser)
	users.Get("/:id", userHandler.GetUserByID)
	users.Put("/:id", userHandler.UpdateUser)
	users.Delete("/:id", userHandler.DeleteUser)
	users.Post("/:id/unlock", userHandler.UnlockUser)

	employees := api.Group("/employees", auth)
	employees.Get("/", reviewers, employeeHandler.GetAllEmployees)
	employees.Get("/me", employeeHandler.GetMyProfile)
	employees.Get("/:id", employeeHandler.GetEmployeeByID)
	employees.Post("/", hrStaff, employeeHandler.CreateEmployee)
	employees.Put("/:id", hrStaff, employeeHandler.UpdateEmployee)
	employees.Delete("/:id", adminOnly, employeeHandler.DeleteEmployee)

	departments := api.Group("/departments", auth)
	departments.Get("/", deptHandler.GetAllDepartments)
	departments.Get("/:id", deptHandler.GetDepartmentByID)
	departments.Post("/", hrStaff, deptHandler.CreateDepartment)
	departments.Put("/:id", hrStaff, deptHandler.UpdateDepartment)
	departments.Delete("/:id", adminOnly, deptHandler.DeleteDepartment)

	attendance := api.Group("/attendance", auth)
	attendance.Post("/clock-in", attendanceHandler.ClockIn)
	attendance.Post("/clock-out", attendanceHandler.ClockOut)
	attendance.Get("/me", attendanceHandler.GetMyAttendance)
	attendance.Get("/summary", attendanceHandler.GetSummary)
	attendance.Get("/", reviewers, attendanceHandler.GetAllAttendance)
	attendance.Post("/", hrStaff, attendanceHandler.CreateAttendance)
	attendance.Put("/:id", hrStaff, attendanceHandler.UpdateAttendance)
	attendance.Delete("/:id", hrStaff, attendanceHandler.DeleteAttendance)

	leaves := api.Group("/leaves", auth)
	leaves.Post("/", leaveHandler.CreateLeaveRequest)
	leaves.Get("/me", leaveHandler.GetMyLeaveRequests)
	leaves.Get("/balance/me", leaveHandler.GetMyBalance)
	leaves.Get("/balance/:employeeId", leaveHandler.GetEmployeeBalance)
	leaves.Put("/balance/:employeeId", hrStaff, leaveHandler.UpdateEmployeeBalance)
	leaves.Get("/attachments/:fileId", fileHandler.GetAttachment)
	leaves.Get("/", reviewers, leaveHandler.GetAllLeaveRequests)
	leaves.Get("/:id", leaveHandler.GetLeaveRequestByID)
	leaves.Put("/:id/approve", reviewers, leaveHandler.ApproveLeaveRequest)
	leaves.Put("/:id/reject", reviewers, leaveHandler.RejectLeaveRequest)
	leaves.Put("/:id/cancel", leaveHandler.CancelLeaveRequest)
	leaves.Post("/:id/attachment", leaveHandler.UploadAttachment)

	payrolls := api.Group("/payroll", auth)
	payrolls.Post("/generate", hrStaff, payrollHandler.GeneratePayroll)
	payrolls.Post("/generate-all", hrStaff, payrollHandler.GenerateAllPayrolls)
	payrolls.Get("/me", payrollHandler.GetMyPayrolls)
	payrolls.Get("/", hrStaff, payrollHandler.GetAllPayrolls)
	payrolls.Get("/:id", payrollHandler.GetPayrollByID)
	payrolls.Put("/:id/status", hrStaff, payrollHandler.UpdatePayrollStatus)
	payrolls.Delete("/:id", adminOnly, payrollHandler.DeletePayroll)

	notifications := api.Group("/notifications", auth)
	notifications.Get("/", notificationHandler.GetMyNotifications)
	notifications.Get("/unread-count", notificationHandler.GetUnreadCount)
	notifications.Put("/read-all", notificationHandler.MarkAllRead)
	notifications.Put("/:id/read", notificationHandler.MarkRead)
	notifications.Delete("/:id", notificationHandler.DeleteNotification)
	notifications.Post("/", hrStaff, notificationHandler.CreateNotification)

	exits := api.Group("/exit-interviews", auth)
	exits.Get("/me", exitHandler.GetMyExitInterviews)
	exits.Get("/", hrStaff, exitHandler.GetAllExitInterviews)
	exits.Post("/", hrStaff, exitHandler.CreateExitInterview)
	exits.Get("/:id", exitHandler.GetExitInterviewByID)
	exits.Put("/:id", hrStaff, exitHandler.UpdateExitInterview)
	exits.Put("/:id/complete", hrStaff, exitHandler.CompleteExitInterview)
	exits.Delete("/:id", adminOnly, exitHandler.DeleteExitInterview)

	reports := api.Group("/reports", auth, reviewers)
	reports.Get("/dashboard", reportHandler.GetDashboard)
	reports.Get("/attendance", reportHandler.GetAttendanceReport)
	reports.Get("/attendance/export", reportHandler.ExportAttendanceReport)
	reports.Get("/leave", reportHandler.GetLeaveReport)
	reports.Get("/payroll", reportHandler.GetPayrollReport)
	reports.Get("/payroll/export", reportHandler.ExportPayrollReport)
	reports.Get("/departments", reportHandler.GetDepartmentReport)

	log.Println("All API routes registered under /api; Swagger UI at /docs/index.html")
}
