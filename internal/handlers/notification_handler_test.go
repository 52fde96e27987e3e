package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"uniconnect/config"
	"uniconnect/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotification(t *testing.T, userID uint, title string, read bool) models.Notification {
	t.Helper()
	n := models.Notification{
		UserID:   userID,
		Title:    title,
		Message:  "corps du message",
		Severity: models.SeverityInfo,
		Read:     read,
	}
	require.NoError(t, config.DB.Create(&n).Error)
	return n
}

func TestNotificationListIsOwnerScoped(t *testing.T) {
	setupTestDB(t)
	me := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")
	other := createTestUser(t, "Omar Ba", "omar@esp.sn", models.RoleStudent, "L1-GC")

	seedNotification(t, me.ID, "Pour moi", false)
	seedNotification(t, me.ID, "Déjà lue", true)
	seedNotification(t, other.ID, "Pas pour moi", false)

	w := doJSON(newTestRouter(identityOf(me)), http.MethodGet, "/api/notifications", nil)
	requireStatus(t, w, http.StatusOK)

	var resp struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int64                 `json:"unreadCount"`
	}
	decodeJSON(t, w, &resp)
	require.Len(t, resp.Notifications, 2)
	assert.EqualValues(t, 1, resp.UnreadCount)
	for _, n := range resp.Notifications {
		assert.Equal(t, me.ID, n.UserID)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	setupTestDB(t)
	me := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")
	n := seedNotification(t, me.ID, "Nouvelle annonce", false)

	r := newTestRouter(identityOf(me))
	w := doJSON(r, http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", n.ID), nil)
	requireStatus(t, w, http.StatusOK)

	var reloaded models.Notification
	require.NoError(t, config.DB.First(&reloaded, n.ID).Error)
	assert.True(t, reloaded.Read)
}

func TestMarkOthersNotificationIsNotFound(t *testing.T) {
	setupTestDB(t)
	me := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")
	other := createTestUser(t, "Omar Ba", "omar@esp.sn", models.RoleStudent, "L1-GC")
	n := seedNotification(t, other.ID, "Privée", false)

	w := doJSON(newTestRouter(identityOf(me)), http.MethodPut, fmt.Sprintf("/api/notifications/%d/read", n.ID), nil)
	requireStatus(t, w, http.StatusNotFound)

	var reloaded models.Notification
	require.NoError(t, config.DB.First(&reloaded, n.ID).Error)
	assert.False(t, reloaded.Read)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	setupTestDB(t)
	me := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")
	other := createTestUser(t, "Omar Ba", "omar@esp.sn", models.RoleStudent, "L1-GC")
	seedNotification(t, me.ID, "Une", false)
	seedNotification(t, me.ID, "Deux", false)
	survivor := seedNotification(t, other.ID, "Ailleurs", false)

	w := doJSON(newTestRouter(identityOf(me)), http.MethodPut, "/api/notifications/read-all", nil)
	requireStatus(t, w, http.StatusOK)

	var unread int64
	require.NoError(t, config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", me.ID, false).Count(&unread).Error)
	assert.EqualValues(t, 0, unread)

	var reloaded models.Notification
	require.NoError(t, config.DB.First(&reloaded, survivor.ID).Error)
	assert.False(t, reloaded.Read, "other users' alerts stay untouched")
}

func TestDeleteNotificationOwnerScoped(t *testing.T) {
	setupTestDB(t)
	me := createTestUser(t, "Awa Ndiaye", "awa@esp.sn", models.RoleStudent, "L2-Info")
	other := createTestUser(t, "Omar Ba", "omar@esp.sn", models.RoleStudent, "L1-GC")
	mine := seedNotification(t, me.ID, "À supprimer", true)
	theirs := seedNotification(t, other.ID, "Intouchable", false)

	r := newTestRouter(identityOf(me))
	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", mine.ID), nil)
	requireStatus(t, w, http.StatusOK)

	w = doJSON(r, http.MethodDelete, fmt.Sprintf("/api/notifications/%d", theirs.ID), nil)
	requireStatus(t, w, http.StatusNotFound)

	var count int64
	require.NoError(t, config.DB.Model(&models.Notification{}).
		Where("user_id = ?", other.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
