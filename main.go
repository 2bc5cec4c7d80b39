package main

import (
	"fmt"

	"vidshare/media-api/app"
	"vidshare/media-api/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	router, err := app.Bootstrap(cfg)
	if err != nil {
		panic(err)
	}

	zap.L().Info("Server starting", zap.Int("port", cfg.Host.Port))

	if err := router.Run(fmt.Sprintf(":%d", cfg.Host.Port)); err != nil {
		panic(err)
	}
}
