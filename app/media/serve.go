package media

import (
	"errors"
	"net/http"
	"strings"

	"vidshare/media-api/internal"
	"vidshare/media-api/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Serve streams a stored blob back to the client. Keys map 1:1 onto the
// /media/ URL space, so the same relative path a record keeps is what
// gets requested here
func Serve(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	key := strings.TrimPrefix(c.Param("object"), "/")
	if !storage.ValidKey(key) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Not found",
			"requestID": requestID,
		})
		return
	}

	rc, size, ct, err := d.Store.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to open blob", zap.String("key", key), zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, size, ct, rc, nil)
}
