package router

import (
	"net/http"
	"time"

	"essay-feed/cache"
	"essay-feed/handlers"
	"essay-feed/helper"
	"essay-feed/middleware"
	"essay-feed/repositories"
	"essay-feed/services"
	"essay-feed/session"
	"essay-feed/views"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Services struct {
	Auth          services.AuthService
	Users         services.UserService
	Essays        services.EssayService
	Relationships services.RelationshipService
}

type Options struct {
	JWTSecret     string
	JWTExpiration time.Duration
	SessionSecret string
	BcryptCost    int
	SecureCookies bool
}

// NewServices wires repositories and services on top of db.
func NewServices(db *gorm.DB, sessions cache.SessionCache, opts Options) Services {
	userRepo := repositories.NewUserRepository(db)
	essayRepo := repositories.NewEssayRepository(db)
	relRepo := repositories.NewRelationshipRepository(db)

	userService := services.NewUserService(userRepo, sessions, opts.BcryptCost)

	return Services{
		Auth:          services.NewAuthService(userRepo, userService, sessions, opts.JWTSecret, opts.JWTExpiration),
		Users:         userService,
		Essays:        services.NewEssayService(essayRepo, userRepo),
		Relationships: services.NewRelationshipService(relRepo, userRepo),
	}
}

func Setup(svc Services, opts Options) *gin.Engine {
	h := helper.NewHTTPHelper()

	authHandler := handlers.NewAuthHandler(svc.Auth, h)
	sessionHandler := handlers.NewSessionHandler(svc.Auth, opts.SecureCookies)
	userHandler := handlers.NewUserHandler(svc.Users, svc.Essays, h, opts.SecureCookies)
	essayHandler := handlers.NewEssayHandler(svc.Essays, h)
	relHandler := handlers.NewRelationshipHandler(svc.Relationships, h)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())
	router.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/api/"}),
	))
	router.SetHTMLTemplate(views.Templates())
	router.Use(session.Middleware(opts.SessionSecret, opts.SecureCookies))
	router.Use(middleware.LoadCurrentUser(svc.Auth))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Pages
	router.GET("/", sessionHandler.New)
	router.GET("/login", sessionHandler.New)
	router.POST("/login", sessionHandler.Create)
	router.GET("/logout", sessionHandler.Destroy)
	router.POST("/logout", sessionHandler.Destroy)

	router.GET("/users/new", userHandler.New)
	router.GET("/signup", userHandler.New)
	router.POST("/signup", userHandler.Create)
	router.POST("/users", userHandler.Create)

	signedIn := router.Group("/")
	signedIn.Use(middleware.RequireSignedIn())
	{
		signedIn.GET("/feed", essayHandler.FeedPage)
		signedIn.POST("/essays", essayHandler.CreateFromForm)
	}

	// API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.CORS())
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(svc.Auth, svc.Users))
		{
			protected.GET("/profile", authHandler.GetProfile)
			protected.GET("/feed", essayHandler.GetFeed)

			essays := protected.Group("/essays")
			{
				essays.POST("", essayHandler.CreateEssay)
				essays.GET("/:id", essayHandler.GetEssay)
				essays.DELETE("/:id", essayHandler.DeleteEssay)
			}

			users := protected.Group("/users")
			{
				users.GET("/:id", userHandler.Show)
				users.DELETE("/:id", userHandler.Delete)
				users.GET("/:id/essays", userHandler.Essays)
				users.PUT("/:id/password", userHandler.ChangePassword)
				users.POST("/:id/follow", relHandler.Follow)
				users.DELETE("/:id/follow", relHandler.Unfollow)
				users.GET("/:id/following", relHandler.Following)
				users.GET("/:id/followers", relHandler.Followers)
				users.PUT("/:id/admin", middleware.RequireAdmin(), userHandler.ToggleAdmin)
			}
		}
	}

	return router
}
