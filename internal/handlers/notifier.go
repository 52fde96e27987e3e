package handlers

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"uniconnect/config"
	"uniconnect/models"

	"gorm.io/gorm"
)

// Forward window for "exam soon" alerts.
const examAlertWindow = 24 * time.Hour

// Dedup keys outlive the window so a restarted scan cannot re-alert an exam
// that is still upcoming.
const examAlertDedupTTL = 48 * time.Hour

// In-process fallback for the dedup set when Redis is not configured. Also
// what the tests exercise.
var (
	alertedMu   sync.Mutex
	alertedKeys = make(map[string]bool)
)

// NotifyAudience creates one notification row per user in the target class
// ("all" fans out to every active account) and pushes a change event to each
// recipient. Best-effort end to end: failures are logged, never returned.
// Callers hand in the database handle because fan-out usually runs in a
// goroutine outliving the request.
func NotifyAudience(db *gorm.DB, className, title, message, severity string) {
	var users []models.User
	query := db.Where("active = ?", true)
	if className != models.ClassAll {
		query = query.Where("class_name = ?", className)
	}
	if err := query.Find(&users).Error; err != nil {
		slog.Warn("Notification fan-out query failed", "class", className, "error", err)
		return
	}

	for _, user := range users {
		n := models.Notification{
			UserID:   user.ID,
			Title:    title,
			Message:  message,
			Severity: severity,
		}
		if err := db.Create(&n).Error; err != nil {
			slog.Warn("Failed to create notification", "user_id", user.ID, "error", err)
			continue
		}
		GlobalHub.PublishToUser(user.ID, ChangeEvent{
			Channel: ChannelNotifications,
			Action:  "insert",
			ID:      n.ID,
		})
	}
}

// ScanUpcomingExams alerts every affected user about exams starting within
// the next 24 hours. Each (exam, user) pair is alerted at most once, enforced
// by a SETNX-style dedup key.
func ScanUpcomingExams(db *gorm.DB, now time.Time) {
	var exams []models.Exam
	err := db.
		Where("date > ? AND date <= ?", now, now.Add(examAlertWindow)).
		Find(&exams).Error
	if err != nil {
		slog.Warn("Upcoming exam scan failed", "error", err)
		return
	}

	for _, exam := range exams {
		var users []models.User
		query := db.Where("active = ?", true)
		if exam.ClassName != models.ClassAll {
			query = query.Where("class_name = ?", exam.ClassName)
		}
		if err := query.Find(&users).Error; err != nil {
			slog.Warn("Exam audience query failed", "exam_id", exam.ID, "error", err)
			continue
		}

		for _, user := range users {
			if !markAlerted(exam.ID, user.ID) {
				continue
			}
			n := models.Notification{
				UserID:   user.ID,
				Title:    "Examen demain: " + exam.Subject,
				Message:  fmt.Sprintf("%s le %s, salle %s", exam.Subject, exam.Date.Format("02/01 15:04"), exam.Room),
				Severity: models.SeverityWarning,
			}
			if err := db.Create(&n).Error; err != nil {
				slog.Warn("Failed to create exam alert", "exam_id", exam.ID, "user_id", user.ID, "error", err)
				continue
			}
			GlobalHub.PublishToUser(user.ID, ChangeEvent{
				Channel: ChannelNotifications,
				Action:  "insert",
				ID:      n.ID,
			})
		}
	}
}

// markAlerted claims the (exam, user) dedup key. Returns false when the pair
// was already alerted.
func markAlerted(examID, userID uint) bool {
	key := fmt.Sprintf("alerted:exam:%d:user:%d", examID, userID)

	if config.RDB != nil {
		ok, err := config.RDB.SetNX(config.Ctx, key, "1", examAlertDedupTTL).Result()
		if err != nil {
			slog.Warn("Redis SETNX failed for exam alert dedup", "key", key, "error", err)
			return false
		}
		return ok
	}

	alertedMu.Lock()
	defer alertedMu.Unlock()
	if alertedKeys[key] {
		return false
	}
	alertedKeys[key] = true
	return true
}

// ResetAlertDedup clears the in-process dedup set. Test hook.
func ResetAlertDedup() {
	alertedMu.Lock()
	defer alertedMu.Unlock()
	alertedKeys = make(map[string]bool)
}

// RunExamWatcher re-runs the exam scan on a fixed interval as a fallback to
// the event-driven path. Runs for the life of the process.
func RunExamWatcher(interval time.Duration) {
	ScanUpcomingExams(config.DB, time.Now())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ScanUpcomingExams(config.DB, time.Now())
	}
}
