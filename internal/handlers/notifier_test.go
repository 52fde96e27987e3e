package handlers

import (
	"testing"
	"time"

	"uniconnect/config"
	"uniconnect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyAudienceFansOutToClassOnly(t *testing.T) {
	db := setupTestDB(t)
	a := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")
	b := createTestUser(t, "Fatou Sow", "fatou@esp.sn", models.RoleStudent, "L2-Info")
	other := createTestUser(t, "Omar Ba", "omar@esp.sn", models.RoleStudent, "L1-GC")

	NotifyAudience(db, "L2-Info", "Titre", "Message", models.SeverityInfo)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id IN ?", []uint{a.ID, b.ID}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", other.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestNotifyAudienceAllReachesEveryActiveUser(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")
	createTestUser(t, "Omar Ba", "omar@esp.sn", models.RoleStudent, "L1-GC")
	inactive := createTestUser(t, "Parti Depuis", "parti@esp.sn", models.RoleStudent, "L2-Info")
	require.NoError(t, db.Model(&inactive).Update("active", false).Error)

	NotifyAudience(db, models.ClassAll, "Info générale", "Message", models.SeverityInfo)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

// Fan-out runs in goroutines that can outlive the request, so it must write
// through the handle it was given, not whatever the global points at by then.
func TestNotifyAudienceWritesThroughGivenHandle(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")

	// Re-point the global at a fresh database, as the next test would.
	setupTestDB(t)

	NotifyAudience(db, "L2-Info", "Titre", "Message", models.SeverityInfo)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	require.NoError(t, config.DB.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count, "nothing may leak into the swapped-in database")
}

func TestExamScanAlertsWindowOnce(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")

	now := time.Now()
	soon := models.Exam{Subject: "Bases de données", ClassName: "L2-Info", Date: now.Add(6 * time.Hour), Room: "102"}
	edge := models.Exam{Subject: "Réseaux", ClassName: "L2-Info", Date: now.Add(23 * time.Hour), Room: "201"}
	far := models.Exam{Subject: "Algèbre", ClassName: "L2-Info", Date: now.Add(72 * time.Hour), Room: "A1"}
	past := models.Exam{Subject: "Histoire", ClassName: "L2-Info", Date: now.Add(-2 * time.Hour), Room: "A2"}
	require.NoError(t, db.Create(&soon).Error)
	require.NoError(t, db.Create(&edge).Error)
	require.NoError(t, db.Create(&far).Error)
	require.NoError(t, db.Create(&past).Error)

	ScanUpcomingExams(db, now)

	var notifs []models.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&notifs).Error)
	require.Len(t, notifs, 2)
	for _, n := range notifs {
		assert.Equal(t, models.SeverityWarning, n.Severity)
		assert.Contains(t, n.Title, "Examen demain")
	}

	// A second pass over the same window is a no-op thanks to the dedup set.
	ScanUpcomingExams(db, now)
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestExamScanSkipsOtherClasses(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, "Omar Ba", "omar@esp.sn", models.RoleStudent, "L1-GC")

	exam := models.Exam{Subject: "Bases de données", ClassName: "L2-Info", Date: time.Now().Add(3 * time.Hour), Room: "102"}
	require.NoError(t, db.Create(&exam).Error)

	ScanUpcomingExams(db, time.Now())

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
