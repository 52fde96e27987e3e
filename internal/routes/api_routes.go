package routes

import (
	"uniconnect/internal/handlers"
	"uniconnect/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registers every authenticated route under /api.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		apiGroup.GET("/session", handlers.GetSessionHandler)

		profile := apiGroup.Group("/profile")
		{
			profile.PUT("", handlers.UpdateProfileHandler)
			profile.PUT("/password", handlers.ChangePasswordHandler)
			profile.POST("/photo", handlers.UploadPhotoHandler)
		}

		announcements := apiGroup.Group("/announcements")
		{
			announcements.GET("", handlers.ListAnnouncementsHandler)
			announcements.POST("", handlers.CreateAnnouncementHandler)
			announcements.PUT("/:id", handlers.UpdateAnnouncementHandler)
			announcements.DELETE("/:id", handlers.DeleteAnnouncementHandler)
			announcements.POST("/:id/share", handlers.ShareAnnouncementHandler)
			announcements.POST("/:id/favorite", handlers.ToggleFavoriteHandler)
		}
		apiGroup.GET("/favorites", handlers.ListFavoritesHandler)

		exams := apiGroup.Group("/exams")
		{
			exams.GET("", handlers.ListExamsHandler)
			exams.POST("", handlers.CreateExamHandler)
			exams.PUT("/:id", handlers.UpdateExamHandler)
			exams.DELETE("/:id", handlers.DeleteExamHandler)
		}

		polls := apiGroup.Group("/polls")
		{
			polls.GET("", handlers.ListPollsHandler)
			polls.POST("", handlers.CreatePollHandler)
			polls.POST("/:id/vote/:optionId", handlers.VoteInPollHandler)
			polls.PUT("/:id/state", handlers.SetPollStateHandler)
			polls.DELETE("/:id", handlers.DeletePollHandler)
		}

		meetings := apiGroup.Group("/meetings")
		{
			meetings.GET("", handlers.ListMeetingsHandler)
			meetings.POST("", handlers.CreateMeetingHandler)
			meetings.PUT("/:id", handlers.UpdateMeetingHandler)
			meetings.DELETE("/:id", handlers.DeleteMeetingHandler)
		}

		schedule := apiGroup.Group("/schedule")
		{
			schedule.GET("/:className", handlers.GetScheduleHandler)
			schedule.PUT("/:className", handlers.SaveScheduleHandler)
		}

		notifications := apiGroup.Group("/notifications")
		{
			notifications.GET("", handlers.ListNotificationsHandler)
			notifications.PUT("/:id/read", handlers.MarkNotificationReadHandler)
			notifications.PUT("/read-all", handlers.MarkAllNotificationsReadHandler)
			notifications.DELETE("/:id", handlers.DeleteNotificationHandler)
		}

		apiGroup.GET("/groups", handlers.ListGroupsHandler)

		apiGroup.GET("/events/ws", handlers.EventsWSEndpoint)

		assistant := apiGroup.Group("/assistant")
		{
			assistant.POST("/ask", handlers.AskAssistantHandler)
			assistant.GET("/settings", middleware.RequireAdmin(), handlers.GetAssistantSettingsHandler)
			assistant.POST("/settings", middleware.RequireAdmin(), handlers.SaveAssistantSettingsHandler)
		}

		admin := apiGroup.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", handlers.ListUsersHandler)
			admin.POST("/users", handlers.CreateUserHandler)
			admin.GET("/users/:id", handlers.GetUserHandler)
			admin.PUT("/users/:id", handlers.UpdateUserHandler)
			admin.POST("/users/:id/revoke", handlers.RevokeUserHandler)

			admin.POST("/groups", handlers.CreateGroupHandler)
			admin.PUT("/groups/:id", handlers.UpdateGroupHandler)
			admin.DELETE("/groups/:id", handlers.DeleteGroupHandler)

			admin.GET("/activity-log", handlers.ListActivityLogHandler)

			admin.GET("/export/users.csv", handlers.ExportUsersCSVHandler)
			admin.GET("/export/users.xlsx", handlers.ExportUsersXLSXHandler)
			admin.GET("/export/activity-log.csv", handlers.ExportActivityLogCSVHandler)
		}
	}
}
