package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tourly/internal/config"
	"github.com/joshua-takyi/tourly/internal/container"
	"github.com/joshua-takyi/tourly/internal/handlers"
	"github.com/joshua-takyi/tourly/internal/middleware"
	"github.com/joshua-takyi/tourly/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container, cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	secure := cfg.IsProduction()
	auth := middleware.NewAuthenticator(container.Verifier, container.UserService, container.Logger, secure)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limited := limiter.Limit()
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "OK",
				"service": "tourly-api",
			})
		})

		v1.POST("/signup", limited, handlers.CreateUser(container.UserService))
		v1.POST("/login", limited, handlers.AuthenticateUser(container.UserService, secure))
		v1.POST("/logout", handlers.Logout(secure))
	}

	// public reads; a signed-in caller also sees their own unapproved events
	public := v1.Group("/")
	public.Use(auth.Optional())
	{
		public.GET("/spots", handlers.ListSpots(container.SpotService))
		public.GET("/spots/:id", handlers.GetSpot(container.SpotService))
		public.GET("/spots/:id/reviews", handlers.ListReviews(container.ReviewService, models.SubjectSpot))

		public.GET("/guides", handlers.ListGuides(container.GuideService))
		public.GET("/guides/:id", handlers.GetGuide(container.GuideService))
		public.GET("/guides/:id/reviews", handlers.ListReviews(container.ReviewService, models.SubjectGuide))

		public.GET("/events", handlers.ListEvents(container.EventService))
		public.GET("/events/:id", handlers.GetEvent(container.EventService))
		public.GET("/events/:id/comments", handlers.ListComments(container.CommentService, models.ParentEvent))

		public.GET("/blogs", handlers.ListBlogs(container.BlogService))
		public.GET("/blogs/:id", handlers.GetBlog(container.BlogService))
		public.GET("/blogs/:id/comments", handlers.ListComments(container.CommentService, models.ParentBlog))
	}

	protected := v1.Group("/")
	protected.Use(auth.Required())
	{
		protected.GET("/profile", handlers.Profile(container.UserService))
		protected.GET("/users/:id", handlers.GetUser(container.UserService))
		protected.PATCH("/users/:id", handlers.UpdateUser(container.UserService))

		protected.POST("/spots", adminOnly, handlers.CreateSpot(container.SpotService))
		protected.PATCH("/spots/:id", adminOnly, handlers.UpdateSpot(container.SpotService))
		protected.DELETE("/spots/:id", adminOnly, handlers.DeleteSpot(container.SpotService))

		protected.POST("/spots/:id/reviews", limited, handlers.CreateReview(container.ReviewService, models.SubjectSpot))
		protected.POST("/guides/:id/reviews", limited, handlers.CreateReview(container.ReviewService, models.SubjectGuide))
		protected.GET("/reviews/mine", handlers.ListMyReviews(container.ReviewService))
		protected.PATCH("/reviews/:id", limited, handlers.UpdateReview(container.ReviewService))
		protected.DELETE("/reviews/:id", limited, handlers.DeleteReview(container.ReviewService))

		protected.POST("/guide-applications", limited, handlers.ApplyForGuide(container.GuideService))
		protected.GET("/guide-applications/mine", handlers.ListMyApplications(container.GuideService))
		protected.GET("/guide-applications/:id", handlers.GetApplication(container.GuideService))

		protected.POST("/events", handlers.CreateEvent(container.EventService))
		protected.PATCH("/events/:id", handlers.UpdateEvent(container.EventService))
		protected.DELETE("/events/:id", handlers.DeleteEvent(container.EventService))
		protected.POST("/events/:id/interest", handlers.ToggleInterest(container.EventService))
		protected.POST("/events/:id/bookmark", handlers.ToggleBookmark(container.EventService))
		protected.POST("/events/:id/register", limited, handlers.RegisterForEvent(container.EventService))
		protected.GET("/events/:id/registrations", handlers.ListEventRegistrations(container.EventService))
		protected.POST("/events/:id/comments", handlers.CreateComment(container.CommentService, models.ParentEvent))
		protected.GET("/registrations/mine", handlers.ListMyRegistrations(container.EventService))

		protected.POST("/blogs", handlers.CreateBlog(container.BlogService))
		protected.PATCH("/blogs/:id", handlers.UpdateBlog(container.BlogService))
		protected.DELETE("/blogs/:id", handlers.DeleteBlog(container.BlogService))
		protected.POST("/blogs/:id/comments", handlers.CreateComment(container.CommentService, models.ParentBlog))
		protected.PATCH("/comments/:id", handlers.UpdateComment(container.CommentService))
		protected.DELETE("/comments/:id", handlers.DeleteComment(container.CommentService))

		protected.GET("/threads", handlers.ListThreads(container.ThreadService))
		protected.GET("/threads/:id", handlers.GetThread(container.ThreadService))
		protected.GET("/threads/:id/messages", handlers.ListMessages(container.ThreadService))
		protected.POST("/threads/:id/messages", handlers.PostMessage(container.ThreadService))

		protected.GET("/notifications", handlers.ListNotifications(container.NotificationService))
		protected.POST("/notifications/:id/read", handlers.MarkNotificationRead(container.NotificationService))
	}

	admin := protected.Group("/admin")
	admin.Use(adminOnly)
	{
		admin.GET("/guide-applications", handlers.ListApplications(container.GuideService))
		admin.POST("/guide-applications/:id/approve", handlers.ApproveApplication(container.GuideService))
		admin.POST("/guide-applications/:id/reject", handlers.RejectApplication(container.GuideService))
		admin.PATCH("/events/:id/status", handlers.SetEventStatus(container.EventService))
	}

	return r
}
