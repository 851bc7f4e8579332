package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"larre/model"
	"larre/services"
)

func DashboardController(router gin.IRouter, overview *services.Overview) {
	router.GET("/views", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"views": model.Views})
	})
	router.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, overview.Build())
	})
}
