package video

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"vidshare/media-api/internal"
	"vidshare/media-api/internal/model"
	"vidshare/media-api/internal/serializer"
	"vidshare/media-api/internal/storage"
	"vidshare/media-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func Upload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	if !strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Expected a multipart form",
			"requestID": requestID,
		})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid multipart form",
			"requestID": requestID,
		})

		zap.L().Debug("Failed to parse multipart form", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Checked before anything else, clients get this exact message when
	// the file part is missing regardless of what else is wrong
	files := form.File["video_file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No video file provided",
			"requestID": requestID,
		})
		return
	}

	input := serializer.VideoInput{Title: c.PostForm("title")}
	if errs := input.Validate(); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"errors":    errs,
			"requestID": requestID,
		})
		return
	}

	fh := files[0]

	code, vf, videoCT, err := validators.VideoFileValidator(fh, d.Cfg.Upload.MaxSize)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate video file", zap.Error(err), zap.String("requestID", requestID))

			c.JSON(code, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})
			return
		}

		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer vf.Close()

	// The client can't pick the owner, the record always belongs to the
	// session user
	video := model.Video{
		UserID: userID,
		Title:  input.Title,
	}

	objectID := uuid.NewString()
	videoKey := storage.VideoKey(userID, objectID+path.Ext(fh.Filename))
	ctx := c.Request.Context()

	if err := d.Store.Save(ctx, videoKey, vf, fh.Size, videoCT); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store video blob", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	video.VideoKey = videoKey

	if thumbs := form.File["thumbnail"]; len(thumbs) > 0 {
		th := thumbs[0]

		code, tf, thumbCT, err := validators.ThumbnailValidator(th, d.Cfg.Upload.MaxSize)
		if err != nil {
			if code == http.StatusInternalServerError {
				zap.L().Error("Failed to validate thumbnail", zap.Error(err), zap.String("requestID", requestID))

				// Keep internal details out of the response
				err = errors.New("internal server error")
			}

			cleanupBlobs(c, d, videoKey)

			c.JSON(code, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}
		defer tf.Close()

		thumbKey := storage.ThumbKey(userID, objectID+path.Ext(th.Filename))
		if err := d.Store.Save(ctx, thumbKey, tf, th.Size, thumbCT); err != nil {
			cleanupBlobs(c, d, videoKey)

			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to store thumbnail blob", zap.Error(err), zap.String("requestID", requestID))
			return
		}
		video.ThumbKey = &thumbKey
	}

	if err := d.DB.Create(&video).Error; err != nil {
		// Blob writes aren't part of the insert transaction, so undo them
		// by hand to not leave orphans behind
		keys := []string{videoKey}
		if video.ThumbKey != nil {
			keys = append(keys, *video.ThumbKey)
		}
		cleanupBlobs(c, d, keys...)

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save video record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, serializer.VideoCreatedOut(c, &video))
}

func cleanupBlobs(c *gin.Context, d *internal.Deps, keys ...string) {
	for _, key := range keys {
		if err := d.Store.Delete(c.Request.Context(), key); err != nil {
			zap.L().Error("Failed to clean up blob after failed upload", zap.String("key", key), zap.Error(err))
		} else {
			zap.L().Debug("Cleaned up blob after failed upload", zap.String("key", key))
		}
	}
}
