package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"larre/dto"
	"larre/model"
	"larre/services"
)

func SettingsController(router gin.IRouter, settings *services.Settings) {
	routes := router.Group("/settings")
	{
		routes.GET("", func(c *gin.Context) {
			respond(c, settings, settings.Current())
		})
		routes.PUT("", func(c *gin.Context) {
			UpdateSettings(c, settings)
		})
		routes.POST("/theme/toggle", func(c *gin.Context) {
			prefs, err := settings.ToggleTheme(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save theme"})
				return
			}
			respond(c, settings, prefs)
		})
		routes.POST("/sidebar/toggle", func(c *gin.Context) {
			prefs, err := settings.ToggleSidebar(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save sidebar state"})
				return
			}
			respond(c, settings, prefs)
		})
	}
}

func UpdateSettings(c *gin.Context, settings *services.Settings) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	prefs := settings.Current()
	var err error
	if req.Dark != nil {
		if prefs, err = settings.SetDark(c.Request.Context(), *req.Dark); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save theme"})
			return
		}
	}
	if req.SidebarCollapsed != nil {
		if prefs, err = settings.SetSidebarCollapsed(c.Request.Context(), *req.SidebarCollapsed); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save sidebar state"})
			return
		}
	}
	respond(c, settings, prefs)
}

func respond(c *gin.Context, settings *services.Settings, prefs model.Preferences) {
	c.JSON(http.StatusOK, dto.SettingsResponse{Preferences: prefs, RootClasses: settings.RootClasses()})
}
