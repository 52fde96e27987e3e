package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"uniconnect/config"
	"uniconnect/internal/middleware"
	"uniconnect/models"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"gorm.io/gorm"
)

const assistantApology = "Désolé, je ne peux pas répondre pour le moment. Réessayez plus tard."

// assistantSettings loads the singleton config row, creating the disabled
// default on first access.
func assistantSettings() (models.AssistantSettings, error) {
	var settings models.AssistantSettings
	err := config.DB.First(&settings, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.AssistantSettings{Verbosity: "normal", Tone: "friendly"}
		settings.ID = 1
		err = config.DB.Create(&settings).Error
	}
	return settings, err
}

// GetAssistantSettingsHandler exposes the gate to the admin console.
func GetAssistantSettingsHandler(c *gin.Context) {
	settings, err := assistantSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load assistant settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type assistantSettingsInput struct {
	Enabled   *bool  `json:"enabled" binding:"required"`
	Verbosity string `json:"verbosity" binding:"omitempty,oneof=short normal detailed"`
	Tone      string `json:"tone"`
}

// SaveAssistantSettingsHandler updates the remotely configured gate.
func SaveAssistantSettingsHandler(c *gin.Context) {
	ident := middleware.Identity(c)

	var input assistantSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assistant settings"})
		return
	}

	settings, err := assistantSettings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load assistant settings"})
		return
	}

	settings.Enabled = *input.Enabled
	if input.Verbosity != "" {
		settings.Verbosity = input.Verbosity
	}
	if input.Tone != "" {
		settings.Tone = input.Tone
	}
	if err := config.DB.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save assistant settings"})
		return
	}

	models.LogActivity(ident.FullName, "assistant_settings", fmt.Sprintf("enabled=%t", settings.Enabled), models.SeverityInfo)
	c.JSON(http.StatusOK, settings)
}

type askInput struct {
	Prompt  string `json:"prompt" binding:"required"`
	Context string `json:"context"`
}

// AskAssistantHandler relays a prompt to Gemini and streams the answer back
// as chunked text. Any upstream failure degrades to a static apology with a
// 200 so the UI never breaks on assistant trouble.
func AskAssistantHandler(c *gin.Context) {
	settings, err := assistantSettings()
	if err != nil || !settings.Enabled {
		c.JSON(http.StatusForbidden, gin.H{"error": "The assistant is currently disabled"})
		return
	}

	var input askInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A prompt is required"})
		return
	}

	if config.GeminiClient == nil {
		c.String(http.StatusOK, assistantApology)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"Tu es l'assistant du portail étudiant UniConnect de l'École Supérieure Polytechnique. "+
			"Réponds en français, ton %s, niveau de détail: %s. "+
			"Tu aides les étudiants avec leurs questions sur les cours, examens, emplois du temps et la vie du campus. "+
			"N'invente pas de faits.\n\nContexte: %s\n\nQuestion: %s",
		settings.Tone, settings.Verbosity, input.Context, input.Prompt)

	iter := config.GeminiClient.GenerateContentStream(ctx, genai.Text(prompt))

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Content-Type-Options", "nosniff")

	wrote := false
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			slog.Error("Gemini stream failed", "error", err)
			if !wrote {
				c.String(http.StatusOK, assistantApology)
			}
			return
		}
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					if _, err := c.Writer.WriteString(string(text)); err != nil {
						return
					}
					wrote = true
				}
			}
		}
		c.Writer.Flush()
	}

	if !wrote {
		c.String(http.StatusOK, assistantApology)
	}
}
