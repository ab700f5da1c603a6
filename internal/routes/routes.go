package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	generativeAI "github.com/FACorreiaa/go-genai-sdk/lib"

	"github.com/FACorreiaa/roamly/internal/app/domain/auth"
	"github.com/FACorreiaa/roamly/internal/app/domain/itineraries"
	"github.com/FACorreiaa/roamly/internal/app/domain/places"
	"github.com/FACorreiaa/roamly/internal/app/domain/recommend"
	"github.com/FACorreiaa/roamly/internal/app/domain/user"
	database "github.com/FACorreiaa/roamly/internal/db"
	"github.com/FACorreiaa/roamly/internal/pkg/config"
	"github.com/FACorreiaa/roamly/internal/pkg/middleware"
)

// AppHandlers holds every HTTP handler group, wired once at startup.
type AppHandlers struct {
	Auth        *auth.Handlers
	Users       *user.Handlers
	Places      *places.Handlers
	Itineraries *itineraries.Handlers
	Chat        *recommend.ChatHandlers
}

// Setup wires dependencies and registers all routes on the engine.
func Setup(ctx context.Context, r *gin.Engine, mongo *database.Mongo, cfg *config.Config, log *zap.Logger) error {
	handlers, err := setupDependencies(ctx, mongo, cfg, log)
	if err != nil {
		return err
	}
	setupRouter(r, handlers, cfg, log)
	return nil
}

func setupDependencies(ctx context.Context, mongo *database.Mongo, cfg *config.Config, log *zap.Logger) (*AppHandlers, error) {
	placeRepo := places.NewRepositoryImpl(mongo.Places, log)
	placeGateway := places.NewGatewayImpl(cfg.Places, placeRepo, log)
	placeService := places.NewServiceImpl(placeGateway, placeRepo, log)

	userRepo := user.NewRepositoryImpl(mongo.Users, log)
	userService := user.NewServiceImpl(userRepo, placeService, log)

	authService := auth.NewServiceImpl(userRepo, cfg, log)

	aiClient, err := generativeAI.NewLLMChatClient(ctx, cfg.Gemini.APIKey)
	if err != nil {
		return nil, err
	}
	recommendService := recommend.NewServiceImpl(aiClient, log)
	analyzer := recommend.NewAnalyzer()

	itineraryRepo := itineraries.NewRepositoryImpl(mongo.Itineraries, log)
	itineraryService := itineraries.NewServiceImpl(itineraryRepo, placeService, recommendService, userService, log)

	return &AppHandlers{
		Auth:        auth.NewHandlers(authService, log),
		Users:       user.NewHandlers(userService, log),
		Places:      places.NewHandlers(placeService, userService, log),
		Itineraries: itineraries.NewHandlers(itineraryService, log),
		Chat:        recommend.NewChatHandlers(recommendService, analyzer, userService, placeService, log),
	}, nil
}

func setupRouter(r *gin.Engine, h *AppHandlers, cfg *config.Config, log *zap.Logger) {
	optionalAuth := middleware.JWTAuthMiddleware(middleware.JWTConfig{
		SecretKey:       cfg.JWT.SecretKey,
		TokenExpiration: cfg.JWT.TokenExpiration,
		Logger:          log,
		Optional:        true,
	})
	requiredAuth := middleware.JWTAuthMiddleware(middleware.JWTConfig{
		SecretKey:       cfg.JWT.SecretKey,
		TokenExpiration: cfg.JWT.TokenExpiration,
		Logger:          log,
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}

	// Place reads work anonymously when ll is supplied; a token lets the
	// profile location fill in for a missing ll.
	placesGroup := r.Group("/places")
	placesGroup.Use(optionalAuth)
	{
		placesGroup.GET("/search", h.Places.Search)
		placesGroup.GET("/nearby", h.Places.Nearby)
		placesGroup.GET("/trending", middleware.ResponseCache(5*time.Minute), h.Places.Trending)
		placesGroup.GET("/category/:name", h.Places.Category)
		placesGroup.GET("/:id", h.Places.Details)
		placesGroup.GET("/:id/photos", h.Places.Photos)
		placesGroup.GET("/:id/tips", h.Places.Tips)
	}

	itinerariesGroup := r.Group("/itineraries")
	{
		// Public discovery endpoints stay readable without a token.
		itinerariesGroup.GET("/popular", middleware.ResponseCache(time.Minute), h.Itineraries.Popular)
		itinerariesGroup.GET("/location", h.Itineraries.ByLocation)

		owned := itinerariesGroup.Group("")
		owned.Use(requiredAuth, middleware.RequireAuthMiddleware())
		{
			owned.POST("/generate", h.Itineraries.Generate)
			owned.GET("", h.Itineraries.List)
			owned.GET("/:id", h.Itineraries.Get)
			owned.PUT("/:id", h.Itineraries.Update)
			owned.DELETE("/:id", h.Itineraries.Delete)
			owned.POST("/:id/places", h.Itineraries.AddPlace)
			owned.DELETE("/:id/places/:ref", h.Itineraries.RemovePlace)
			owned.PUT("/:id/places/:ref/visited", h.Itineraries.MarkVisited)
			owned.POST("/:id/like", h.Itineraries.ToggleLike)
			owned.POST("/:id/share", h.Itineraries.Share)
		}
	}

	chatGroup := r.Group("/chat")
	chatGroup.Use(requiredAuth, middleware.RequireAuthMiddleware())
	{
		chatGroup.POST("/message", h.Chat.Message)
		chatGroup.POST("/recommendations", h.Chat.Recommendations)
	}

	usersGroup := r.Group("/users")
	usersGroup.Use(requiredAuth, middleware.RequireAuthMiddleware())
	{
		usersGroup.GET("/me", h.Users.Me)
		usersGroup.PUT("/me", h.Users.UpdateMe)
		usersGroup.PUT("/me/preferences", h.Users.UpdatePreferences)
		usersGroup.GET("/me/favorites", h.Users.ListFavorites)
		usersGroup.POST("/me/favorites/:placeId", h.Users.AddFavorite)
		usersGroup.DELETE("/me/favorites/:placeId", h.Users.RemoveFavorite)
	}
}
