package api

import (
	"asterank/asteroid-api/model"
	"asterank/asteroid-api/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

type favoriteBody struct {
	AsteroidID string  `json:"asteroid_id"`
	Name       string  `json:"name"`
	Type       *string `json:"type"`
	Distance   *string `json:"distance"`
	Value      *string `json:"value"`
	Notes      *string `json:"notes"`
}

func validateFavoriteFields(data *favoriteBody) validators.FieldErrors {
	errs := validators.FieldErrors{}
	errs.AddErr("name", validators.NameValidator(data.Name))
	errs.AddErr("type", validators.OptionalFieldValidator(data.Type))
	errs.AddErr("distance", validators.OptionalFieldValidator(data.Distance))
	errs.AddErr("value", validators.OptionalFieldValidator(data.Value))
	return errs
}

// FavoriteStore creates a favorite, or refreshes its display fields and
// notes if the user already saved this asteroid. Favoriting something
// twice is not an error.
func (a *API) FavoriteStore(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data favoriteBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Malformed or invalid JSON request body",
			"requestID": requestID,
		})
		return
	}

	errs := validateFavoriteFields(&data)
	errs.AddErr("asteroid_id", validators.AsteroidIDValidator(data.AsteroidID))

	if errs.Any() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":   false,
			"errors":    errs,
			"requestID": requestID,
		})
		return
	}

	fav := model.Favorite{
		UserID:     userID,
		AsteroidID: data.AsteroidID,
		Name:       data.Name,
		Type:       data.Type,
		Distance:   data.Distance,
		Value:      data.Value,
		Notes:      data.Notes,
	}

	// Native upsert on the (user_id, asteroid_id) unique index, no
	// separate existence check needed
	err := a.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "asteroid_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "type", "distance", "value", "notes", "updated_at"}),
	}).Create(&fav).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upsert favorite", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Reload so the response carries the row ID and timestamps even when
	// the upsert took the update path
	err = a.DB.
		Where("user_id = ? AND asteroid_id = ?", userID, data.AsteroidID).
		First(&fav).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reload favorite", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    fav,
	})
}
