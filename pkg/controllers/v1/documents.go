package v1

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// sendDocument sends a rendered document as attachment. With
// ?format=json, only the path of the written file is returned.
func sendDocument(c *gin.Context, path string) {
	if c.Query("format") == "json" {
		respond(c, http.StatusOK, Document{Path: path})
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
