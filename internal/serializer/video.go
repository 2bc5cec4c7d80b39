package serializer

import (
	"vidshare/media-api/internal/model"

	"github.com/gin-gonic/gin"
)

// VideoInput holds the non-file fields of an upload request
type VideoInput struct {
	Title string
}

func (in *VideoInput) Validate() map[string]string {
	errs := make(map[string]string)

	if in.Title == "" {
		errs["title"] = "no title provided"
	} else if len(in.Title) > 255 {
		errs["title"] = "title is too long"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// VideoOut is a list entry for a stored video. URLs are absolute and built
// from the current request because the store only keeps relative keys
func VideoOut(c *gin.Context, v *model.Video) gin.H {
	var thumbURL any
	if v.ThumbKey != nil {
		thumbURL = AbsoluteMediaURL(c, *v.ThumbKey)
	}

	return gin.H{
		"id":            v.ID,
		"title":         v.Title,
		"video_url":     AbsoluteMediaURL(c, v.VideoKey),
		"thumbnail_url": thumbURL,
		"created_at":    v.CreatedAt,
	}
}

// VideoCreatedOut is the upload response. The camelCase URL keys differ
// from the list shape on purpose, mobile clients already depend on both
func VideoCreatedOut(c *gin.Context, v *model.Video) gin.H {
	var thumbURL any
	if v.ThumbKey != nil {
		thumbURL = AbsoluteMediaURL(c, *v.ThumbKey)
	}

	return gin.H{
		"id":           v.ID,
		"title":        v.Title,
		"videoUrl":     AbsoluteMediaURL(c, v.VideoKey),
		"thumbnailUrl": thumbURL,
		"created_at":   v.CreatedAt,
	}
}

// AbsoluteMediaURL combines a stored object key with the scheme and host
// the current request came in on
func AbsoluteMediaURL(c *gin.Context, key string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if fp := c.GetHeader("X-Forwarded-Proto"); fp != "" {
		scheme = fp
	}

	return scheme + "://" + c.Request.Host + "/media/" + key
}
