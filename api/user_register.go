package api

import (
	"asterank/asteroid-api/model"
	"asterank/asteroid-api/util"
	"asterank/asteroid-api/validators"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

type registerBody struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	errs := validators.FieldErrors{}
	errs.AddErr("name", validators.NameValidator(data.Name))
	errs.AddErr("email", validators.EmailValidator(data.Email))
	errs.AddErr("password", validators.PasswordValidator(data.Password))

	if data.Password != data.PasswordConfirmation {
		errs.Add("password", "password confirmation does not match")
	}

	if errs.Any() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":   false,
			"errors":    errs,
			"requestID": requestID,
		})
		return
	}

	var found bool

	r := a.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", data.Email).
		Find(&found)
	if r.Error != nil && r.Error != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"errors": validators.FieldErrors{
				"email": {"this email is already registered"},
			},
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	userID, err := gonanoid.Generate(charset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user := model.User{
		ID:           userID,
		Name:         data.Name,
		Email:        data.Email,
		PasswordHash: hash,
	}

	if err := a.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Registration hands out an unbounded session, unlike login which
	// always sets an expiry
	token, err := issueToken(a.DB, userID, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue auth token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// issueToken creates a fresh opaque bearer token for a user and stores
// its hash. A nil expiry means the session never times out. Takes the db
// handle as a parameter so login can run it inside a transaction.
func issueToken(db *gorm.DB, userID string, expiresAt *time.Time) (string, error) {
	raw, err := util.GenerateToken(32)
	if err != nil {
		return "", err
	}

	token := model.AuthToken{
		UserID:    userID,
		TokenHash: util.HashToken(raw),
		ExpiresAt: expiresAt,
	}

	if err := db.Create(&token).Error; err != nil {
		return "", err
	}

	return raw, nil
}
