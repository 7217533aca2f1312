package api

import (
	"asterank/asteroid-api/model"
	"asterank/asteroid-api/validators"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (a *API) UserLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Malformed or invalid JSON request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	errs := validators.FieldErrors{}
	errs.AddErr("email", validators.EmailValidator(data.Email))

	if data.Password == "" {
		errs.Add("password", "no password provided")
	}

	if errs.Any() {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"success":   false,
			"errors":    errs,
			"requestID": requestID,
		})
		return
	}

	var user model.User

	if err := a.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		}

		// Same message as a wrong password so the response doesn't
		// reveal which emails are registered
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success":   false,
			"message":   "Invalid credentials",
			"requestID": requestID,
		})
		return
	}

	ok, err := a.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success":   false,
			"message":   "Invalid credentials",
			"requestID": requestID,
		})
		return
	}

	expiresAt := time.Now().Add(time.Duration(viper.GetInt("auth.token_ttl_hours")) * time.Hour)
	if data.RememberMe {
		expiresAt = time.Now().Add(time.Duration(viper.GetInt("auth.remember_ttl_days")) * 24 * time.Hour)
	}

	var token string

	// Delete-all plus insert runs in one transaction so two overlapping
	// logins can't leave the user with zero or two live sessions
	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(model.AuthToken{}).Error; err != nil {
			return err
		}

		token, err = issueToken(tx, user.ID, &expiresAt)
		return err
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to rotate auth tokens", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"user":        user,
		"token":       token,
		"remember_me": data.RememberMe,
	})
}
