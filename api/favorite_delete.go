package api

import (
	"asterank/asteroid-api/model"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) FavoriteDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	favoriteID := c.Param("id")
	if favoriteID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "No favorite ID provided",
			"requestID": requestID,
		})
		return
	}

	var fav model.Favorite

	err := a.DB.
		Where("user_id = ? AND id = ?", userID, favoriteID).
		First(&fav).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success":   false,
				"message":   "Favorite not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch favorite", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.DB.Delete(&fav).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete favorite", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Favorite removed",
	})
}
