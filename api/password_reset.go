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

type resetBody struct {
	Email                string `json:"email"`
	Code                 string `json:"code"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

func (a *API) PasswordReset(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data resetBody
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
	errs.AddErr("email", validators.EmailValidator(data.Email))
	errs.AddErr("code", validators.ResetCodeValidator(data.Code))
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

	var reset model.PasswordReset

	err := a.DB.Where("email = ?", data.Email).First(&reset).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"message":   "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to look up reset request", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Invalid reset code",
			"requestID": requestID,
		})
		return
	}

	ttl := time.Duration(viper.GetInt("auth.reset_code_ttl_minutes")) * time.Minute

	if time.Since(reset.CreatedAt) > ttl {
		// The stale row is useless, remove it so a retry reports
		// "invalid" instead of "expired" again
		if err := a.DB.Where("email = ?", data.Email).Delete(model.PasswordReset{}).Error; err != nil {
			zap.L().Error("Failed to delete stale reset request", zap.Error(err), zap.String("requestID", requestID))
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Reset code has expired",
			"requestID": requestID,
		})
		return
	}

	ok, err := a.Argon.VerifyPasswd(data.Code, reset.CodeHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify reset code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		// Same message as a missing record, a caller can't tell which
		// of the two happened
		c.JSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   "Invalid reset code",
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

		zap.L().Error("Failed to hash new password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(model.User{}).
			Where("email = ?", data.Email).
			Update("password_hash", hash).
			Error
		if err != nil {
			return err
		}

		return tx.Where("email = ?", data.Email).Delete(model.PasswordReset{}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password has been reset successfully",
	})
}
