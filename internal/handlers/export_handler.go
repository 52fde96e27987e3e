package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

var userRosterHeaders = []string{"ID", "Nom complet", "Email", "Rôle", "Classe", "École", "Actif", "Inscrit le"}

func userRosterRow(user models.User) []string {
	return []string{
		strconv.FormatUint(uint64(user.ID), 10),
		user.FullName,
		user.Email,
		user.Role,
		user.ClassName,
		user.School,
		strconv.FormatBool(user.Active),
		user.CreatedAt.Format("2006-01-02"),
	}
}

func fetchRoster(className string) ([]models.User, error) {
	var users []models.User
	query := config.DB.Order("class_name asc, full_name asc")
	if className != "" {
		query = query.Where("class_name = ?", className)
	}
	err := query.Find(&users).Error
	return users, err
}

// ExportUsersCSVHandler streams the roster as delimited text. The optional
// className query narrows it to one group's roster.
func ExportUsersCSVHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	users, err := fetchRoster(c.Query("className"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data for export"})
		return
	}

	fileName := fmt.Sprintf("roster_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+fileName)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(userRosterHeaders)
	for _, user := range users {
		_ = w.Write(userRosterRow(user))
	}
	w.Flush()

	models.LogActivity(ident.FullName, "export_roster", fileName, models.SeverityInfo)
}

// ExportUsersXLSXHandler produces the same roster as a spreadsheet.
func ExportUsersXLSXHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	users, err := fetchRoster(c.Query("className"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data for export"})
		return
	}

	f := excelize.NewFile()
	sheetName := "Annuaire"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	for i, header := range userRosterHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for i, user := range users {
		for j, value := range userRosterRow(user) {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	fileName := fmt.Sprintf("roster_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
		return
	}

	models.LogActivity(ident.FullName, "export_roster_xlsx", fileName, models.SeverityInfo)
}

// ExportActivityLogCSVHandler dumps the audit trail as delimited text.
func ExportActivityLogCSVHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var entries []models.ActivityLogEntry
	if err := config.DB.Order("created_at desc").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data for export"})
		return
	}

	fileName := fmt.Sprintf("activity_log_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+fileName)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Date", "Acteur", "Action", "Cible", "Sévérité"})
	for _, entry := range entries {
		_ = w.Write([]string{
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.Actor,
			entry.Action,
			entry.Target,
			entry.Severity,
		})
	}
	w.Flush()

	models.LogActivity(ident.FullName, "export_activity_log", fileName, models.SeverityInfo)
}
