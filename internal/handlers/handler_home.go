package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetHome answers the health probe.
func GetHome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
