// uniconnect/main.go
package main

import (
	"log/slog"
	"os"
	"time"

	"uniconnect/config"
	"uniconnect/internal/handlers"
	"uniconnect/internal/routes"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
)

func main() {
	config.Load()
	config.ConnectDB()
	config.ConnectRedis()
	if err := config.InitGoogleServices(); err != nil {
		slog.Warn("Assistant disabled", "reason", err)
	}

	err := config.DB.AutoMigrate(
		&models.User{},
		&models.ClassGroup{},
		&models.Announcement{},
		&models.AnnouncementLink{},
		&models.Exam{},
		&models.Poll{},
		&models.PollOption{},
		&models.PollVote{},
		&models.MeetingLink{},
		&models.ScheduleSlot{},
		&models.Notification{},
		&models.Favorite{},
		&models.ActivityLogEntry{},
		&models.AssistantSettings{},
	)
	if err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	go handlers.GlobalHub.Run()
	go handlers.RunExamWatcher(time.Hour)

	r := gin.Default()
	r.Static("/static", "./static")
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("UniConnect portal listening", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
