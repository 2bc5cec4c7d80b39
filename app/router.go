// Package app wires the HTTP surface together
package app

import (
	"fmt"
	"time"

	"vidshare/media-api/app/media"
	"vidshare/media-api/app/root"
	"vidshare/media-api/app/user"
	"vidshare/media-api/app/video"
	"vidshare/media-api/config"
	"vidshare/media-api/db"
	"vidshare/media-api/internal"
	"vidshare/media-api/internal/storage"
	"vidshare/media-api/pkg/middleware"
	"vidshare/media-api/pkg/security"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

// Bootstrap builds every dependency from the config and returns a ready
// to run engine
func Bootstrap(cfg *config.Config) (*gin.Engine, error) {
	makeLogger(cfg.App.LogLevel)

	d := &internal.Deps{
		Cfg:   cfg,
		Argon: security.New(),
	}

	gdb, err := db.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = gdb

	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob storage, %w", err)
	}
	d.Store = store

	return NewRouter(d), nil
}

// NewRouter registers all routes and middleware on a fresh engine. It
// takes the dependencies ready-made so tests can swap in their own
func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// A "*" origin together with credentials isn't allowed by the cors
	// package, an allow-everything func gets the same effect
	if len(d.Cfg.Host.CORSOrigins) == 1 && d.Cfg.Host.CORSOrigins[0] == "*" {
		corsCfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		corsCfg.AllowOrigins = d.Cfg.Host.CORSOrigins
	}

	router.Use(
		cors.New(corsCfg),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		middleware.AllowedHosts(d.Cfg.Host.AllowedHosts),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	if d.Cfg.Security.RateLimit > 0 {
		router.Use(middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: d.Cfg.Security.RateLimit,
			Burst:             d.Cfg.Security.RateLimit * 2,
		}))
	}

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	session := middleware.NewSessionMiddleware(d.DB, d.Cfg.Security.SessionSecret)

	// HEAD /heartbeat		-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)

	// POST /register/		-> Creates a new user account
	router.POST("/register/", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.Register(c, d) })

	// POST /login/ 		-> Verifies credentials and starts a session
	router.POST("/login/", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { user.Login(c, d) })

	v := router.Group("/videos", session)
	{
		// GET /videos/ 		-> Lists the session user's videos
		v.GET("/", func(c *gin.Context) { video.List(c, d) })

		// POST /videos/upload/		-> Uploads a new video with an optional thumbnail
		v.POST("/upload/", middleware.BodySizeLimiter(d.Cfg.Upload.MaxSize*2), func(c *gin.Context) { video.Upload(c, d) })
	}

	// GET /media/*object		-> Serves stored blobs
	router.GET("/media/*object", func(c *gin.Context) { media.Serve(c, d) })

	return router
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
