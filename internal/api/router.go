package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"attendance-backend/config"
	"attendance-backend/internal/coordinator"
	"attendance-backend/internal/facematch"
	"attendance-backend/internal/identity"
	"attendance-backend/internal/mw"
	"attendance-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, coord *coordinator.Coordinator, tokens *identity.Service, matcher *facematch.Matcher, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, coord, tokens, matcher, webpushOptions, cfg.Reports.Dir)

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	// Cache: short TTL so listings stay fresh across session transitions
	cacheStore := cache.New(time.Minute, 10*time.Minute)
	caching := mw.Cache(cacheStore, time.Minute)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register/user", handler.RegisterUser)
			auth.POST("/register/admin", handler.RegisterAdmin)
			auth.POST("/login/user", handler.LoginUser)
			auth.POST("/login/admin", handler.LoginAdmin)
			auth.GET("/me", mw.Auth(tokens), handler.Me)
		}

		admin := api.Group("/admin")
		admin.Use(mw.Auth(tokens, identity.RoleAdmin))
		{
			admin.POST("/locations", handler.CreateLocation)
			admin.GET("/locations", caching, handler.ListLocations)
			admin.DELETE("/locations/:id", handler.DeleteLocation)

			admin.POST("/sessions/start", handler.StartSession)
			admin.PUT("/sessions/end", handler.EndSession)
			admin.GET("/sessions/active/attendance", handler.ActiveSessionAttendance)
			admin.GET("/sessions/previous", caching, handler.PreviousSessions)
			admin.GET("/sessions/:id/report", handler.DownloadReport)

			admin.GET("/users/match-data", handler.UserMatchData)
			admin.POST("/attendance/mark", handler.AdminMarkAttendance)
			admin.POST("/attendance/scan", handler.ScanAttendance)
		}

		user := api.Group("/user")
		user.Use(mw.Auth(tokens, identity.RoleUser))
		{
			user.POST("/attendance/mark", handler.MarkAttendance)
			user.GET("/sessions/active", handler.UserActiveSessions)
		}

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
