package service

import (
	"time"

	"asterank/asteroid-api/model"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TokenCleanup defines a function used to periodically remove expired
// auth tokens and stale password reset codes. Both also get rejected at
// read time, this just keeps the tables from growing forever.
func TokenCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Token cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			err := db.
				Where("expires_at IS NOT NULL AND expires_at < ?", time.Now()).
				Delete(model.AuthToken{}).
				Error
			if err != nil {
				zap.L().Error("Failed to clean up expired auth tokens", zap.Error(err))
			}

			cutoff := time.Now().Add(-time.Duration(viper.GetInt("auth.reset_code_ttl_minutes")) * time.Minute)

			err = db.
				Where("created_at < ?", cutoff).
				Delete(model.PasswordReset{}).
				Error
			if err != nil {
				zap.L().Error("Failed to clean up stale password resets", zap.Error(err))
			}
		}
	}()
}
