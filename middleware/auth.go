// Package middleware contains any custom middleware used in the app
package middleware

import (
	"asterank/asteroid-api/model"
	"asterank/asteroid-api/util"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewAuthMiddleware validates the opaque bearer token against the
// auth_tokens table and loads the owning user. On success the context
// carries userID, user and authTokenID (the latter so logout can delete
// exactly the session that made the request).
func NewAuthMiddleware(d *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "Unauthenticated",
				"requestID": requestID,
			})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")

		var token model.AuthToken
		err := d.
			Where("token_hash = ?", util.HashToken(raw)).
			First(&token).
			Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				zap.L().Error("Failed to look up auth token", zap.Error(err), zap.String("requestID", requestID))
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "Unauthenticated",
				"requestID": requestID,
			})
			return
		}

		if token.ExpiresAt != nil && time.Now().After(*token.ExpiresAt) {
			// Dead session, remove the row so it doesn't linger until
			// the next cleanup tick
			if err := d.Delete(model.AuthToken{}, token.ID).Error; err != nil {
				zap.L().Error("Failed to delete expired auth token", zap.Error(err), zap.String("requestID", requestID))
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "Unauthenticated",
				"requestID": requestID,
			})
			return
		}

		var user model.User
		err = d.
			Where("id = ?", token.UserID).
			First(&user).
			Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				zap.L().Error("Failed to load token owner", zap.Error(err), zap.String("requestID", requestID))
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":   false,
				"message":   "Unauthenticated",
				"requestID": requestID,
			})
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", user)
		c.Set("authTokenID", token.ID)
		c.Next()
	}
}
