package api

import (
	"asterank/asteroid-api/model"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserFetch returns the authenticated user. The auth middleware already
// loaded the record, this is just the projection.
func (a *API) UserFetch(c *gin.Context) {
	user := c.MustGet("user").(model.User)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
