package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"uniconnect/config"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testDBCounter int64

// setupTestDB points config.DB at a fresh in-memory database. Redis stays
// nil, so the code paths under test fall back to their in-process behavior.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JwtKey = []byte("test-secret")

	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
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
	))

	config.DB = db
	ResetAlertDedup()
	return db
}

// newTestRouter mirrors the real API route tree but injects the given
// identity instead of running the JWT middleware.
func newTestRouter(ident *models.Identity) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if ident != nil {
			c.Set("identity", ident)
			c.Set("user_id", ident.UserID)
		}
		c.Next()
	})

	r.POST("/login", LoginHandler)
	r.GET("/logout", LogoutHandler)

	api := r.Group("/api")
	api.GET("/session", GetSessionHandler)
	api.PUT("/profile", UpdateProfileHandler)
	api.PUT("/profile/password", ChangePasswordHandler)
	api.POST("/profile/photo", UploadPhotoHandler)

	api.GET("/announcements", ListAnnouncementsHandler)
	api.POST("/announcements", CreateAnnouncementHandler)
	api.PUT("/announcements/:id", UpdateAnnouncementHandler)
	api.DELETE("/announcements/:id", DeleteAnnouncementHandler)
	api.POST("/announcements/:id/share", ShareAnnouncementHandler)
	api.POST("/announcements/:id/favorite", ToggleFavoriteHandler)
	api.GET("/favorites", ListFavoritesHandler)

	api.GET("/exams", ListExamsHandler)
	api.POST("/exams", CreateExamHandler)
	api.PUT("/exams/:id", UpdateExamHandler)
	api.DELETE("/exams/:id", DeleteExamHandler)

	api.GET("/polls", ListPollsHandler)
	api.POST("/polls", CreatePollHandler)
	api.POST("/polls/:id/vote/:optionId", VoteInPollHandler)
	api.PUT("/polls/:id/state", SetPollStateHandler)
	api.DELETE("/polls/:id", DeletePollHandler)

	api.GET("/meetings", ListMeetingsHandler)
	api.POST("/meetings", CreateMeetingHandler)
	api.PUT("/meetings/:id", UpdateMeetingHandler)
	api.DELETE("/meetings/:id", DeleteMeetingHandler)

	api.GET("/schedule/:className", GetScheduleHandler)
	api.PUT("/schedule/:className", SaveScheduleHandler)

	api.GET("/notifications", ListNotificationsHandler)
	api.PUT("/notifications/:id/read", MarkNotificationReadHandler)
	api.PUT("/notifications/read-all", MarkAllNotificationsReadHandler)
	api.DELETE("/notifications/:id", DeleteNotificationHandler)

	api.GET("/groups", ListGroupsHandler)

	api.POST("/assistant/ask", AskAssistantHandler)
	api.GET("/assistant/settings", GetAssistantSettingsHandler)
	api.POST("/assistant/settings", SaveAssistantSettingsHandler)

	admin := api.Group("/admin")
	admin.GET("/users", ListUsersHandler)
	admin.POST("/users", CreateUserHandler)
	admin.PUT("/users/:id", UpdateUserHandler)
	admin.POST("/users/:id/revoke", RevokeUserHandler)
	admin.GET("/users/:id", GetUserHandler)
	admin.POST("/groups", CreateGroupHandler)
	admin.PUT("/groups/:id", UpdateGroupHandler)
	admin.DELETE("/groups/:id", DeleteGroupHandler)
	admin.GET("/activity-log", ListActivityLogHandler)
	admin.GET("/export/users.csv", ExportUsersCSVHandler)
	admin.GET("/export/users.xlsx", ExportUsersXLSXHandler)
	admin.GET("/export/activity-log.csv", ExportActivityLogCSVHandler)

	return r
}

func createTestUser(t *testing.T, fullName, email, role, className string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		ClassName:    className,
		Active:       true,
	}
	require.NoError(t, config.DB.Create(&user).Error)
	return user
}

func identityOf(user models.User) *models.Identity {
	return &models.Identity{
		UserID:    user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		Role:      user.Role,
		ClassName: user.ClassName,
	}
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), "body: %s", w.Body.String())
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
