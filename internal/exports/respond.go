package exports

import (
	"net/http"

	"leadscout_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Respond writes an archived artifact as JSON metadata and any other artifact
// as a file download.
func Respond(c *gin.Context, a Artifact) {
	if a.Stored() {
		httpkit.OK(c, a)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+a.FileName)
	c.Data(http.StatusOK, a.ContentType, a.Data)
}
