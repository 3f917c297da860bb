//go:build embed
// +build embed

package main

import (
	"embed"
	"io"
	"io/fs"
	"log"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed web/dist
var webDist embed.FS

// setupStaticFiles serves the embedded dashboard build. Unknown paths fall
// back to index.html for client-side routing.
func setupStaticFiles(router *gin.Engine) {
	log.Println("📦 Using embedded dashboard assets")

	distFS, err := fs.Sub(webDist, "web/dist")
	if err != nil {
		log.Fatalf("Failed to get dist subdirectory: %v", err)
	}

	router.NoRoute(func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if strings.HasPrefix(urlPath, "/api") {
			c.JSON(404, gin.H{"error": "API endpoint not found"})
			return
		}

		name := strings.TrimPrefix(path.Clean(urlPath), "/")
		if name == "" {
			name = "index.html"
		}

		if body, ok := readFile(distFS, name); ok {
			contentType := mime.TypeByExtension(path.Ext(name))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			c.Data(http.StatusOK, contentType, body)
			return
		}

		body, ok := readFile(distFS, "index.html")
		if !ok {
			c.String(http.StatusNotFound, "404 page not found")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
	})
}

func readFile(fsys fs.FS, name string) ([]byte, bool) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, false
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil || stat.IsDir() {
		return nil, false
	}

	body, err := io.ReadAll(file)
	if err != nil {
		return nil, false
	}
	return body, true
}
