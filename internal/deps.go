package internal

import (
	"vidshare/media-api/config"
	"vidshare/media-api/internal/storage"
	"vidshare/media-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Argon *security.ArgonHash
	Store storage.Store
}
