package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/tourly/internal/helpers"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/joshua-takyi/tourly/internal/notify"
	"github.com/joshua-takyi/tourly/internal/services"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger   *slog.Logger
	Verifier helpers.TokenVerifier
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	Repo           *models.MongodbRepo
	Dispatcher     *notify.Dispatcher

	UserService         *services.UserService
	SpotService         *services.SpotService
	ReviewService       *services.ReviewService
	GuideService        *services.GuideService
	EventService        *services.EventService
	ThreadService       *services.ThreadService
	BlogService         *services.BlogService
	CommentService      *services.CommentService
	NotificationService *services.NotificationService
}

type Options struct {
	Logger         *slog.Logger
	Cloudinary     *cloudinary.Cloudinary
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	Database       string
	Transactions   bool
	Verifier       helpers.TokenVerifier
	// Broadcaster is optional; nil keeps notifications store-only.
	Broadcaster notify.Broadcaster
	SupaURL     string
	SupaKey     string
}

// NewContainer creates a new dependency injection container
func NewContainer(opts Options) *Container {
	logger := opts.Logger

	// Initialize repositories
	supa := models.SupabaseNewRepo(opts.SupabaseClient, opts.SupaURL, opts.SupaKey)
	mongo := models.MongodbNewRepo(opts.MongoDBClient, opts.Database, opts.Transactions)

	var uploader helpers.ImageUploader
	if opts.Cloudinary != nil {
		uploader = helpers.NewCloudinaryUploader(opts.Cloudinary, logger)
	}

	dispatcher := notify.NewDispatcher(mongo, opts.Broadcaster, logger, notify.DefaultQueueSize)
	recalc := services.NewRecalculator(mongo, mongo)
	threads := services.NewThreadService(mongo, mongo, mongo, mongo, logger)

	return &Container{
		Logger:              logger,
		Verifier:            opts.Verifier,
		SupabaseClient:      opts.SupabaseClient,
		MongoDBClient:       opts.MongoDBClient,
		Repo:                mongo,
		Dispatcher:          dispatcher,
		UserService:         services.NewUserService(supa, mongo, logger),
		SpotService:         services.NewSpotService(mongo, uploader, logger),
		ReviewService:       services.NewReviewService(mongo, mongo, mongo, recalc, dispatcher, logger),
		GuideService:        services.NewGuideService(mongo, mongo, mongo, logger),
		EventService:        services.NewEventService(mongo, mongo, mongo, threads, uploader, logger),
		ThreadService:       threads,
		BlogService:         services.NewBlogService(mongo, mongo, uploader, logger),
		CommentService:      services.NewCommentService(mongo, mongo, mongo, dispatcher, logger),
		NotificationService: services.NewNotificationService(mongo),
	}
}
