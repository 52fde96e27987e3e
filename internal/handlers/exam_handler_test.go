package handlers

import (
	"net/http"
	"testing"
	"time"

	"uniconnect/config"
	"uniconnect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelegateCreatesExamForOwnClass(t *testing.T) {
	setupTestDB(t)
	delegate := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleDelegate, "L2-Info")
	r := newTestRouter(identityOf(delegate))

	w := doJSON(r, http.MethodPost, "/api/exams", map[string]interface{}{
		"subject":  "Bases de données",
		"date":     time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"duration": "2h00",
		"room":     "102",
	})
	requireStatus(t, w, http.StatusCreated)

	var list []models.Exam
	w = doJSON(r, http.MethodGet, "/api/exams?status=upcoming", nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &list)

	require.Len(t, list, 1)
	assert.Equal(t, "L2-Info", list[0].ClassName)
	assert.Equal(t, "102", list[0].Room)
	assert.Equal(t, "2h00", list[0].Duration)
}

func TestExamUpcomingPastPartition(t *testing.T) {
	setupTestDB(t)
	student := createTestUser(t, "Moussa Fall", "moussa@esp.sn", models.RoleStudent, "L2-Info")
	now := time.Now()

	require.NoError(t, config.DB.Create(&models.Exam{
		Subject: "Analyse", Date: now.Add(48 * time.Hour), ClassName: "L2-Info",
	}).Error)
	require.NoError(t, config.DB.Create(&models.Exam{
		Subject: "Algèbre", Date: now.Add(-48 * time.Hour), ClassName: "L2-Info",
	}).Error)

	r := newTestRouter(identityOf(student))

	var list []models.Exam
	w := doJSON(r, http.MethodGet, "/api/exams?status=upcoming", nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Analyse", list[0].Subject)

	w = doJSON(r, http.MethodGet, "/api/exams?status=past", nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Algèbre", list[0].Subject)
}

func TestExamVisibilityByClass(t *testing.T) {
	setupTestDB(t)
	outsider := createTestUser(t, "Fatou Sarr", "fatou@esp.sn", models.RoleStudent, "L1-GC")
	now := time.Now()

	require.NoError(t, config.DB.Create(&models.Exam{
		Subject: "Bases de données", Date: now.Add(24 * time.Hour), ClassName: "L2-Info",
	}).Error)
	require.NoError(t, config.DB.Create(&models.Exam{
		Subject: "Culture générale", Date: now.Add(24 * time.Hour), ClassName: models.ClassAll,
	}).Error)

	var list []models.Exam
	w := doJSON(newTestRouter(identityOf(outsider)), http.MethodGet, "/api/exams", nil)
	requireStatus(t, w, http.StatusOK)
	decodeJSON(t, w, &list)

	require.Len(t, list, 1)
	assert.Equal(t, "Culture générale", list[0].Subject)
}

func TestStudentCannotCreateExam(t *testing.T) {
	setupTestDB(t)
	student := createTestUser(t, "Moussa Fall", "moussa@esp.sn", models.RoleStudent, "L2-Info")

	w := doJSON(newTestRouter(identityOf(student)), http.MethodPost, "/api/exams", map[string]interface{}{
		"subject": "Triche", "date": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	requireStatus(t, w, http.StatusForbidden)
}
