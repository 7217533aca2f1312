package api

import (
	"asterank/asteroid-api/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FavoriteCheck is a pure existence probe, the frontend uses it to paint
// the star icon without pulling the whole list.
func (a *API) FavoriteCheck(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	asteroidID := c.Param("asteroidID")

	var found bool

	err := a.DB.Model(model.Favorite{}).
		Select("count(*) > 0").
		Where("user_id = ? AND asteroid_id = ?", userID, asteroidID).
		Find(&found).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check favorite", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"is_favorite": found,
	})
}
