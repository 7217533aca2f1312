package api

import (
	"asterank/asteroid-api/model"
	"asterank/asteroid-api/validators"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FavoriteToggle removes the favorite if it exists, otherwise creates it.
// One click in the frontend maps to one call here. The whole check-then-act
// runs in a transaction and the unique index backstops the remaining race
// between two concurrent toggles.
func (a *API) FavoriteToggle(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	asteroidID := c.Param("asteroidID")
	if err := validators.AsteroidIDValidator(asteroidID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   err.Error(),
			"requestID": requestID,
		})
		return
	}

	// The body is only needed for the create half, a toggle-off comes in
	// with no payload at all
	var data favoriteBody
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

	var removed bool
	var fav model.Favorite
	var fieldErrs validators.FieldErrors

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Where("user_id = ? AND asteroid_id = ?", userID, asteroidID).
			Delete(model.Favorite{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			removed = true
			return nil
		}

		// Only the create half cares about the payload, so the fields
		// are validated here and not up front
		if errs := validateFavoriteFields(&data); errs.Any() {
			fieldErrs = errs
			return errValidation
		}

		fav = model.Favorite{
			UserID:     userID,
			AsteroidID: asteroidID,
			Name:       data.Name,
			Type:       data.Type,
			Distance:   data.Distance,
			Value:      data.Value,
			Notes:      data.Notes,
		}

		return tx.Create(&fav).Error
	})
	if err != nil {
		if errors.Is(err, errValidation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success":   false,
				"errors":    fieldErrs,
				"requestID": requestID,
			})
			return
		}

		if isDuplicateErr(err) {
			// A concurrent toggle won the insert race. Treat it the
			// same as if our own insert had succeeded
			if lookupErr := a.DB.Where("user_id = ? AND asteroid_id = ?", userID, asteroidID).First(&fav).Error; lookupErr == nil {
				c.JSON(http.StatusOK, gin.H{
					"success": true,
					"removed": false,
					"data":    fav,
				})
				return
			}
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to toggle favorite", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if removed {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"removed": true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"removed": false,
		"data":    fav,
	})
}

// errValidation aborts the toggle transaction when the create half gets
// an invalid payload.
var errValidation = errors.New("validation failed")

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// The sqlite and postgres drivers don't always translate this
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
