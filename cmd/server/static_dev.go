//go:build !embed
// +build !embed

package main

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles is the development variant: the dashboard runs on its own
// dev server, the API only answers JSON.
func setupStaticFiles(router *gin.Engine) {
	log.Println("🔧 Dashboard assets not embedded (development mode)")
	log.Println("   Run the dashboard dev server separately: cd web && npm run dev")

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(200, gin.H{
			"message": "Dashboard is served separately in development",
			"dev_url": "http://localhost:3000",
		})
	})
}
