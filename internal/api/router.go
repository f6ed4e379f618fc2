package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/vidtube/backend/docs"
	"github.com/vidtube/backend/internal/api/handler"
	"github.com/vidtube/backend/internal/api/middleware"
	"github.com/vidtube/backend/internal/core/ports"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Users         ports.UserService
	Videos        ports.VideoService
	Comments      ports.CommentService
	Playlists     ports.PlaylistService
	Tweets        ports.TweetService
	Likes         ports.LikeService
	Subscriptions ports.SubscriptionService
}

// Deps wires the router. LoginThrottle and Limiter are optional.
type Deps struct {
	Services Services

	Tokens        ports.TokenVerifier
	UserLoader    middleware.UserLoader
	LoginThrottle middleware.Throttler
	Limiter       middleware.RateLimiter
	Checks        []handler.DependencyCheck

	Cookies     handler.CookiePolicy
	CORSOrigins []string

	// Registry receives the HTTP request metrics and backs /metrics.
	// Defaults to the prometheus default registry.
	Registry *prometheus.Registry

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:                 "vidtube",
		Subsystem:                 "http",
		Registerer:                registerer,
		DoNotUseRequestPathFor404: true,
	}))
	if d.Limiter != nil {
		e.Use(middleware.RateLimit(d.Limiter))
	}

	// --- Ops routes (no auth required) ---
	health := handler.NewHealthHandler()
	ready := handler.NewReadinessHandler(d.Checks...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", ready.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := middleware.Auth(d.Tokens, d.UserLoader)
	optionalAuth := middleware.OptionalAuth(d.Tokens, d.UserLoader)

	v1 := e.Group("/api/v1")

	// --- Users ---
	users := handler.NewUserHandler(d.Services.Users, d.Cookies)
	ug := v1.Group("/users")
	ug.POST("/register", users.Register)
	if d.LoginThrottle != nil {
		ug.POST("/login", users.Login, middleware.LoginThrottle(d.LoginThrottle))
	} else {
		ug.POST("/login", users.Login)
	}
	ug.POST("/refresh-token", users.RefreshToken)
	ug.GET("/channel/:username", users.ChannelProfile, optionalAuth)
	ug.POST("/logout", users.Logout, auth)
	ug.POST("/change-password", users.ChangePassword, auth)
	ug.GET("/current-user", users.CurrentUser, auth)
	ug.PATCH("/update-account", users.UpdateAccount, auth)
	ug.PATCH("/avatar", users.UpdateAvatar, auth)
	ug.PATCH("/cover-image", users.UpdateCoverImage, auth)
	ug.POST("/history/:videoId", users.AddWatchHistory, auth)
	ug.GET("/history", users.WatchHistory, auth)

	// --- Videos ---
	videos := handler.NewVideoHandler(d.Services.Videos)
	vg := v1.Group("/videos")
	vg.GET("", videos.ListPublished)
	vg.POST("", videos.Upload, auth)
	vg.GET("/mine", videos.ListMine, auth)
	vg.GET("/:videoId", videos.Get, optionalAuth)
	vg.PATCH("/:videoId", videos.Update, auth)
	vg.DELETE("/:videoId", videos.Delete, auth)
	vg.PATCH("/:videoId/toggle-publish", videos.TogglePublish, auth)

	// --- Comments ---
	comments := handler.NewCommentHandler(d.Services.Comments)
	cg := v1.Group("/comments", auth)
	cg.GET("/video/:videoId", comments.List)
	cg.POST("/video/:videoId", comments.Add)
	cg.PATCH("/:commentId", comments.Update)
	cg.DELETE("/:commentId", comments.Delete)

	// --- Playlists ---
	playlists := handler.NewPlaylistHandler(d.Services.Playlists)
	pg := v1.Group("/playlists", auth)
	pg.POST("", playlists.Create)
	pg.GET("/mine", playlists.ListMine)
	pg.GET("/:playlistId", playlists.Get)
	pg.PATCH("/:playlistId", playlists.Update)
	pg.DELETE("/:playlistId", playlists.Delete)
	pg.POST("/:playlistId/videos/:videoId", playlists.AddVideo)
	pg.DELETE("/:playlistId/videos/:videoId", playlists.RemoveVideo)

	// --- Tweets ---
	tweets := handler.NewTweetHandler(d.Services.Tweets)
	tg := v1.Group("/tweets", auth)
	tg.POST("", tweets.Create)
	tg.GET("/mine", tweets.ListMine)
	tg.PATCH("/:tweetId", tweets.Update)
	tg.DELETE("/:tweetId", tweets.Delete)

	// --- Likes ---
	likes := handler.NewLikeHandler(d.Services.Likes)
	lg := v1.Group("/likes", auth)
	lg.POST("/video/:videoId", likes.ToggleVideo)
	lg.POST("/comment/:commentId", likes.ToggleComment)
	lg.POST("/tweet/:tweetId", likes.ToggleTweet)
	lg.GET("/videos", likes.LikedVideos)

	// --- Subscriptions ---
	subs := handler.NewSubscriptionHandler(d.Services.Subscriptions)
	sg := v1.Group("/subscriptions", auth)
	sg.POST("/channel/:channelId", subs.Toggle)
	sg.GET("/channel/:channelId", subs.Subscribers)
	sg.GET("/subscriber/:subscriberId", subs.SubscribedChannels)

	return e
}
