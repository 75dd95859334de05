package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/helpers"
	"github.com/joshua-takyi/tourly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BlogService struct {
	blogs    models.BlogsRepo
	comments models.CommentsRepo
	uploader helpers.ImageUploader
	logger   *slog.Logger
}

func NewBlogService(blogs models.BlogsRepo, comments models.CommentsRepo, uploader helpers.ImageUploader, logger *slog.Logger) *BlogService {
	return &BlogService{
		blogs:    blogs,
		comments: comments,
		uploader: uploader,
		logger:   logger,
	}
}

func (bs *BlogService) uploadImages(ctx context.Context, images []string) ([]string, error) {
	if len(images) == 0 || bs.uploader == nil {
		return images, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	urls, err := bs.uploader.UploadImages(ctx, images, helpers.BlogsFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images: %w", err)
	}
	return urls, nil
}

func (bs *BlogService) CreateBlog(ctx context.Context, actor models.Actor, blog *models.Blog) (*models.Blog, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	now := time.Now().UTC()
	blog.ID = primitive.NilObjectID
	blog.AuthorID = actor.ID
	blog.Title = helpers.StringTrim(blog.Title)
	blog.Tags = helpers.RemoveDuplicates(blog.Tags)
	blog.CreatedAt = now
	blog.UpdatedAt = now
	if err := models.Validate.Struct(blog); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid blog", err)
	}
	images, err := bs.uploadImages(ctx, blog.Images)
	if err != nil {
		return nil, err
	}
	blog.Images = images
	return bs.blogs.CreateBlog(ctx, blog)
}

func (bs *BlogService) GetBlog(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	return bs.blogs.GetBlog(ctx, id)
}

func (bs *BlogService) ListBlogs(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*models.Blog, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.Invalid("invalid offset or limit")
	}
	return bs.blogs.ListBlogs(ctx, authorID, offset, limit)
}

func (bs *BlogService) UpdateBlog(ctx context.Context, actor models.Actor, id primitive.ObjectID, upd models.BlogUpdate) (*models.Blog, error) {
	blog, err := bs.blogs.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, blog, models.RelationOwner, "edit this blog"); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(upd); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid blog update", err)
	}
	if upd.Title != nil {
		title := helpers.StringTrim(*upd.Title)
		upd.Title = &title
	}
	if upd.Tags != nil {
		upd.Tags = helpers.RemoveDuplicates(upd.Tags)
	}
	if upd.Images != nil {
		images, err := bs.uploadImages(ctx, upd.Images)
		if err != nil {
			return nil, err
		}
		upd.Images = images
	}
	fields := upd.Fields()
	if len(fields) == 0 {
		return nil, models.Invalid("no fields to update")
	}
	return bs.blogs.UpdateBlog(ctx, id, fields)
}

func (bs *BlogService) DeleteBlog(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	blog, err := bs.blogs.GetBlog(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, blog, models.RelationOwner, "delete this blog"); err != nil {
		return err
	}
	if err := bs.blogs.DeleteBlog(ctx, id); err != nil {
		return err
	}
	if err := bs.comments.DeleteCommentsByParent(ctx, models.ParentBlog, id); err != nil {
		bs.logger.Warn("failed to delete comments of deleted blog", "blog_id", id.Hex(), "error", err)
	}
	return nil
}
