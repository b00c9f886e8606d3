package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/amercier/taskdeck-api/internal/config"
	"github.com/amercier/taskdeck-api/internal/database"
	"github.com/amercier/taskdeck-api/internal/handlers"
	authmw "github.com/amercier/taskdeck-api/internal/middleware"
	"github.com/amercier/taskdeck-api/internal/models"
	"github.com/amercier/taskdeck-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTExpiry)
	userService := services.NewUserService(db)
	companyService := services.NewCompanyService(db)
	taskService := services.NewTaskService(db)
	incidentService := services.NewIncidentService(db)

	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to ensure admin account: %v", err)
	}

	authHandler := handlers.NewAuthHandler(userService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	companyHandler := handlers.NewCompanyHandler(companyService)
	taskHandler := handlers.NewTaskHandler(taskService)
	incidentHandler := handlers.NewIncidentHandler(incidentService, taskService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	api.Post("/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService, userService))

	protected.Get("/me", authHandler.Me)

	protected.Get("/tasks", taskHandler.List)
	protected.Get("/tasks/history", taskHandler.History)
	protected.Post("/tasks", taskHandler.Create)
	protected.Patch("/tasks/:id/status", taskHandler.UpdateStatus)
	protected.Delete("/tasks/:id", taskHandler.Delete)

	protected.Get("/incidents", incidentHandler.ListOpen)
	protected.Post("/incidents", incidentHandler.Report)
	protected.Get("/incidents/resolved", incidentHandler.ListResolved)
	protected.Patch("/incidents/:id/resolve", incidentHandler.Resolve)

	protected.Get("/my-company", companyHandler.MyCompany)

	admin := protected.Group("")
	admin.Use(authmw.RequireRole(models.RoleAdmin))

	admin.Post("/admin/create-user", userHandler.Create)
	admin.Get("/admin/users", userHandler.List)
	admin.Patch("/admin/user/:id", userHandler.Update)
	admin.Delete("/admin/user/:id", userHandler.Delete)

	admin.Get("/companies", companyHandler.List)
	admin.Post("/companies", companyHandler.Create)
	admin.Patch("/companies/:id", companyHandler.Update)
	admin.Delete("/companies/:id", companyHandler.Delete)

	admin.Get("/trash", userHandler.ListTrash)
	admin.Post("/trash/:id/restore", userHandler.Restore)
	admin.Delete("/trash/:id", userHandler.Purge)

	admin.Get("/check-expired-users", userHandler.SweepExpired)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
