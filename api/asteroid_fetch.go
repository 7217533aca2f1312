package api

import (
	"asterank/asteroid-api/config"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AsteroidFetch proxies a SkyMorph search for one target to the Asterank
// API and relays the JSON payload as-is. No retries, the client either
// gets the upstream data or a fail-fast error.
func (a *API) AsteroidFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	target := c.Param("target")
	if target == "" {
		target = c.DefaultQuery("target", viper.GetString("asterank.default_target"))
	}

	reqURL := viper.GetString("asterank.url") + "?target=" + url.QueryEscape(target)

	resp, err := a.HTTP.Get(reqURL)
	if err != nil {
		zap.L().Error("Upstream request failed", zap.Error(err), zap.String("requestID", requestID))

		body := gin.H{
			"success":   false,
			"message":   "Failed to fetch data from Asterank SkyMorph",
			"requestID": requestID,
		}

		if !config.IsProduction() {
			body["error"] = err.Error()
		}

		c.JSON(http.StatusBadGateway, body)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Warn("Upstream returned an error status",
			zap.Int("status", resp.StatusCode),
			zap.String("requestID", requestID))

		c.JSON(http.StatusBadGateway, gin.H{
			"success":   false,
			"message":   "Failed to fetch data from Asterank SkyMorph",
			"requestID": requestID,
		})
		return
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		zap.L().Error("Failed to read upstream response", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusBadGateway, gin.H{
			"success":   false,
			"message":   "Failed to fetch data from Asterank SkyMorph",
			"requestID": requestID,
		})
		return
	}

	// The search endpoint answers with an array of observations, or an
	// object on some targets. Anything else is a malformed response
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Unexpected response format from SkyMorph",
			"requestID": requestID,
		})
		return
	}

	switch data.(type) {
	case []any, map[string]any:
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"message":   "Unexpected response format from SkyMorph",
			"requestID": requestID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"target":  target,
		"data":    data,
	})
}
