package api

import (
	"asterank/asteroid-api/config"
	"asterank/asteroid-api/model"
	"asterank/asteroid-api/validators"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type forgotBody struct {
	Email string `json:"email"`
}

func (a *API) PasswordForgot(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data forgotBody
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

	if errs.Any() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success":   false,
			"errors":    errs,
			"requestID": requestID,
		})
		return
	}

	var user model.User

	if err := a.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":   false,
				"message":   "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"errors": validators.FieldErrors{
				"email": {"no account exists with this email address"},
			},
			"requestID": requestID,
		})
		return
	}

	code, err := genResetCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate reset code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	codeHash, err := a.Argon.GenerateFromPassword(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash reset code", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// One outstanding request per email. A repeat call replaces the old
	// code and restarts the expiry clock
	err = a.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "created_at"}),
	}).Create(&model.PasswordReset{
		Email:     data.Email,
		CodeHash:  codeHash,
		CreatedAt: time.Now(),
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to store reset request", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Mailer.SendResetCode(user.Email, user.Name, code); err != nil {
		zap.L().Error("Failed to send reset code email", zap.Error(err), zap.String("requestID", requestID))

		resp := gin.H{
			"success":   false,
			"message":   "Failed to send email. Please try again later.",
			"requestID": requestID,
		}

		if !config.IsProduction() {
			resp["error"] = err.Error()
		}

		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset code sent to your email",
	})
}

// genResetCode returns a zero-padded 6-digit code from a CSPRNG.
func genResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()), nil
}
