package api

import (
	"asterank/asteroid-api/model"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FavoriteUpdate changes the notes on a favorite. Only notes are mutable
// through this path, display fields come from the upstream data and get
// refreshed via store. A payload without a notes key leaves the stored
// notes alone, an explicit null clears them.
func (a *API) FavoriteUpdate(c *gin.Context) {
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

	// Bind into a map so an omitted notes key can be told apart from an
	// explicit null
	var data map[string]json.RawMessage
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&data); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"message":   "Malformed or invalid JSON request body",
				"requestID": requestID,
			})
			return
		}
	}

	raw, hasNotes := data["notes"]

	var notes *string
	if hasNotes {
		if err := json.Unmarshal(raw, &notes); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success":   false,
				"message":   "Malformed or invalid JSON request body",
				"requestID": requestID,
			})
			return
		}
	}

	var fav model.Favorite

	// Scoping the lookup to user_id doubles as the authorization check,
	// someone else's favorite is indistinguishable from a missing one
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

	if hasNotes {
		err = a.DB.Model(&fav).Update("notes", notes).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"message":   "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to update favorite", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    fav,
	})
}
