// Package api contains all endpoints available
package api

import (
	"asterank/asteroid-api/db"
	"asterank/asteroid-api/middleware"
	"asterank/asteroid-api/security"
	"asterank/asteroid-api/service"
	"fmt"
	"net/http"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB     *gorm.DB
	Router *gin.Engine
	Argon  *security.ArgonHash
	Mailer service.Mailer
	HTTP   *http.Client
}

func NewRouter() (*API, error) {
	a := &API{
		Argon:  security.New(),
		Mailer: service.NewSMTPMailer(),
		HTTP: &http.Client{
			Timeout: time.Duration(viper.GetInt("asterank.timeout_seconds")) * time.Second,
		},
	}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	a.registerRoutes()

	service.TokenCleanup(time.Hour, db)

	return a, nil
}

// registerRoutes wires every endpoint under /api. Split from NewRouter so
// tests can mount the routes on their own API instance.
func (a *API) registerRoutes() {
	auth := middleware.NewAuthMiddleware(a.DB)
	credLimiter := gin.HandlerFunc(func(c *gin.Context) { c.Next() })

	if viper.GetBool("rate_limit.enabled") {
		credLimiter = middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: viper.GetInt("rate_limit.rps"),
			Burst:             viper.GetInt("rate_limit.burst"),
		})
	}

	main := a.Router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a bearer token
		main.HEAD("/validate", auth, a.Validate)

		// POST /api/register		-> Registers a new user
		main.POST("/register", credLimiter, a.UserRegister)

		// POST /api/login		-> Logs in a user and returns a bearer token
		main.POST("/login", credLimiter, a.UserLogin)

		// POST /api/logout		-> Ends the current session
		main.POST("/logout", auth, a.UserLogout)

		// GET /api/user		-> Returns the logged in user
		main.GET("/user", auth, a.UserFetch)

		// POST /api/forgot-password	-> Emails a 6-digit reset code
		main.POST("/forgot-password", credLimiter, a.PasswordForgot)

		// POST /api/reset-password	-> Consumes a reset code and sets a new password
		main.POST("/reset-password", credLimiter, a.PasswordReset)
	}

	favorites := main.Group("/favorites", auth)
	{
		// GET /api/favorites				-> Lists the user's favorites, newest first
		favorites.GET("", a.FavoriteList)

		// POST /api/favorites				-> Creates or updates a favorite
		favorites.POST("", a.FavoriteStore)

		// PUT /api/favorites/:id			-> Updates the notes of a favorite
		favorites.PUT("/:id", a.FavoriteUpdate)

		// DELETE /api/favorites/:id			-> Deletes a favorite
		favorites.DELETE("/:id", a.FavoriteDelete)

		// POST /api/favorites/:asteroidID/toggle	-> Adds or removes a favorite
		favorites.POST("/:asteroidID/toggle", a.FavoriteToggle)

		// GET /api/favorites/:asteroidID/check		-> Checks if an asteroid is favorited
		favorites.GET("/:asteroidID/check", a.FavoriteCheck)
	}

	asteroids := main.Group("/asteroids")
	{
		handlers := []gin.HandlerFunc{}
		if sec := viper.GetInt("asterank.cache_seconds"); sec > 0 {
			handlers = append(handlers, cacheFor(sec))
		}

		// GET /api/asteroids, /api/asteroids/:target	-> Proxies the SkyMorph search
		asteroids.GET("", append(handlers, a.AsteroidFetch)...)
		asteroids.GET("/:target", append(handlers, a.AsteroidFetch)...)
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
