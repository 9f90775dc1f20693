package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"hrms-backend/config"
	"hrms-backend/handlers"
	"hrms-backend/pkg/mailer"
	"hrms-backend/pkg/paseto"
	"hrms-backend/pkg/token"
	"hrms-backend/router"
	"hrms-backend/seeder"

	_ "time/tzdata"
)

// MFA challenges expire quickly; the session token carries the real lifetime.
const mfaChallengeTTL = 5 * time.Minute

// @title HRMS API
// @version 1.0
// @description Human resource management API: employees, departments, attendance, leave, payroll, notifications, exit interviews and reports.
//
// @contact.name API Support
// @contact.email support@example.com
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:3000
// @BasePath /api
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
//
// @tag.name Auth
// @tag.description Registration, login and MFA
//
// @tag.name Users
// @tag.description Account management (admin)
//
// @tag.name Employees
// @tag.description Employee records
//
// @tag.name Departments
// @tag.description Department management
//
// @tag.name Attendance
// @tag.description Clock in/out and attendance records
//
// @tag.name Leave
// @tag.description Leave requests and balances
//
// @tag.name Payroll
// @tag.description Payroll generation and status
//
// @tag.name Notifications
// @tag.description In-app notifications
//
// @tag.name Exit Interviews
// @tag.description Offboarding interviews
//
// @tag.name Reports
// @tag.description Dashboards and exports
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := config.MongoConnect(cfg.MongoString, cfg.DBName); err != nil {
		log.Fatal(err)
	}
	defer config.DisconnectDB()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.InitDatabase(ctx); err != nil {
		cancel()
		log.Fatal(err)
	}
	cancel()

	tokens := token.NewManager(cfg.JWTSecret, cfg.AppName, cfg.JWTTTL)
	challenges, err := paseto.NewPasetoMaker(cfg.PasetoSecret, mfaChallengeTTL)
	if err != nil {
		log.Fatalf("Failed to create MFA token maker: %v", err)
	}

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTP.Enabled() {
		mail = mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		log.Println("SMTP_HOST not set, emails will be written to the log")
	}

	deps := router.NewMongoDependencies(cfg, tokens, challenges, mail)

	if cfg.Seed {
		if err := seeder.SeedDepartments(context.Background(), deps.Departments); err != nil {
			log.Printf("Department seeding failed: %v", err)
		}
		if err := seeder.SeedAdmin(context.Background(), deps.Users, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Printf("Admin seeding failed: %v", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    (cfg.UploadLimitMB + 1) * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	config.SetupCORS(app, cfg.CORSOrigins)

	router.SetupRoutes(app, deps)

	log.Printf("Server running on port %s", cfg.Port)
	log.Printf("API Documentation: http://localhost:%s/docs/index.html", cfg.Port)
	log.Printf("CORS enabled for origins: %v", cfg.CORSOrigins)
	log.Fatal(app.Listen(":" + cfg.Port))
}
