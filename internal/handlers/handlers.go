package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vlogapp/api/internal/config"
	"vlogapp/api/internal/middleware"
	"vlogapp/api/internal/service"
	"vlogapp/api/internal/store"
)

type HandlerSet struct {
	log   zerolog.Logger
	cfg   *config.AppConfig
	db    store.Store
	cache *redis.Client
	auth  *service.AuthService
	reset *service.ResetService
	users *service.UserService
	vlogs *service.VlogService
}

func NewHandlerSet(log zerolog.Logger, db store.Store, cache *redis.Client, blobs service.BlobStore, cfg *config.AppConfig) HandlerSet {
	return HandlerSet{
		log:   log,
		cfg:   cfg,
		db:    db,
		cache: cache,
		auth:  service.NewAuthService(db.Users(), cfg, log),
		reset: service.NewResetService(db.Users(), db.ResetTokens(), cache, cfg, log),
		users: service.NewUserService(db.Users(), cache, cfg, log),
		vlogs: service.NewVlogService(db.Vlogs(), db.Social(), db.Users(), blobs, cfg, log),
	}
}

func (h HandlerSet) Register(engine *gin.Engine) {
	engine.GET("/health", h.Health)

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)
	auth.GET("/me", middleware.Auth(h.cfg), h.Me)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)
	if h.cfg.Debug.ExposeResetTokens {
		// Plaintext token listing. Config.Load refuses this flag in
		// production, so the route never exists there.
		auth.GET("/reset-tokens", h.ListResetTokens)
	}

	api.GET("/stats", h.Stats)
	api.GET("/categories", h.ListCategories)

	api.GET("/users", h.ListUsers)
	api.POST("/users", h.CreateUser)
	api.PUT("/users/:id", h.UpdateUser)
	api.DELETE("/users/:id", h.DeleteUser)
	api.GET("/users/:id/follow-stats", h.FollowStats)

	follows := api.Group("/users", middleware.Auth(h.cfg))
	follows.POST("/:id/follow", h.FollowUser)
	follows.DELETE("/:id/follow", h.UnfollowUser)

	vlogs := api.Group("/vlogs")
	vlogs.GET("", h.ListVlogs)
	vlogs.GET("/:id", h.GetVlog)

	vlogsAuthed := api.Group("/vlogs", middleware.Auth(h.cfg))
	vlogsAuthed.POST("", h.UploadVlog)
	vlogsAuthed.PUT("/:id", h.UpdateVlog)
	vlogsAuthed.DELETE("/:id", h.DeleteVlog)
	vlogsAuthed.POST("/:id/comments", h.AddComment)
	vlogsAuthed.POST("/:id/like", h.LikeVlog)
	vlogsAuthed.DELETE("/:id/like", h.UnlikeVlog)
}

// respondError maps the service error taxonomy to status codes; anything
// unmatched is logged and hidden behind a generic 500.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
	case errors.Is(err, store.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	default:
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
