package sections

import (
	"smarthousing-backend/common"
	"smarthousing-backend/db"
	"smarthousing-backend/storage"
)

// Dependencies holds all shared dependencies for handlers
type Dependencies struct {
	Config *common.Config
	DB     *db.DB
	Redis  *storage.RedisClient
}

// NewDependencies creates a new Dependencies instance
func NewDependencies(cfg *common.Config, database *db.DB, redis *storage.RedisClient) *Dependencies {
	return &Dependencies{
		Config: cfg,
		DB:     database,
		Redis:  redis,
	}
}
