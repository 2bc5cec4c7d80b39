package video

import (
	"net/http"
	"strconv"

	"vidshare/media-api/internal"
	"vidshare/media-api/internal/model"
	"vidshare/media-api/internal/serializer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// List returns every video owned by the session user, newest first.
// Pagination is opt-in through page/limit, by default the whole list
// comes back in one response
func List(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Limit is not a valid integer",
			"requestID": requestID,
		})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Page is not a valid integer",
			"requestID": requestID,
		})
		return
	}

	q := d.DB.
		Where("user_id = ?", userID).
		Order("created_at desc")

	if limit > 0 {
		q = q.Offset(page * limit).Limit(limit)
	}

	var videos []model.Video
	if err := q.Find(&videos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user videos", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	out := make([]gin.H, 0, len(videos))
	for i := range videos {
		out = append(out, serializer.VideoOut(c, &videos[i]))
	}

	c.JSON(http.StatusOK, out)
}
