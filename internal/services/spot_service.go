package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/tourly/internal/helpers"
	"github.com/joshua-takyi/tourly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SpotService struct {
	spots    models.SpotsRepo
	uploader helpers.ImageUploader
	logger   *slog.Logger
}

func NewSpotService(spots models.SpotsRepo, uploader helpers.ImageUploader, logger *slog.Logger) *SpotService {
	return &SpotService{
		spots:    spots,
		uploader: uploader,
		logger:   logger,
	}
}

func (ss *SpotService) uploadImages(ctx context.Context, images []string) ([]string, error) {
	if len(images) == 0 || ss.uploader == nil {
		return images, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	urls, err := ss.uploader.UploadImages(ctx, images, helpers.SpotsFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images: %w", err)
	}
	return urls, nil
}

func requireAdmin(actor models.Actor, action string) error {
	if actor.IsZero() {
		return models.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return models.Forbidden(fmt.Sprintf("only admins can %s", action))
	}
	return nil
}

func (ss *SpotService) CreateSpot(ctx context.Context, actor models.Actor, spot *models.TouristSpot) (*models.TouristSpot, error) {
	if err := requireAdmin(actor, "create tourist spots"); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	spot.ID = primitive.NilObjectID
	spot.Name = helpers.StringTrim(spot.Name)
	spot.Tags = helpers.RemoveDuplicates(spot.Tags)
	spot.CreatedBy = actor.ID
	spot.AvgRating = 0
	spot.ReviewCount = 0
	spot.CreatedAt = now
	spot.UpdatedAt = now
	if err := models.Validate.Struct(spot); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid tourist spot", err)
	}

	images, err := ss.uploadImages(ctx, spot.Images)
	if err != nil {
		return nil, err
	}
	spot.Images = images

	created, err := ss.spots.CreateSpot(ctx, spot)
	if err != nil {
		return nil, err
	}
	ss.logger.Info("tourist spot created", "spot_id", created.ID.Hex(), "created_by", actor.ID)
	return created, nil
}

func (ss *SpotService) GetSpot(ctx context.Context, id primitive.ObjectID) (*models.TouristSpot, error) {
	return ss.spots.GetSpot(ctx, id)
}

func (ss *SpotService) ListSpots(ctx context.Context, region string, offset, limit int) ([]*models.TouristSpot, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.Invalid("invalid offset or limit")
	}
	return ss.spots.ListSpots(ctx, helpers.StringTrim(region), offset, limit)
}

func (ss *SpotService) UpdateSpot(ctx context.Context, actor models.Actor, id primitive.ObjectID, upd models.SpotUpdate) (*models.TouristSpot, error) {
	if err := requireAdmin(actor, "edit tourist spots"); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(upd); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid tourist spot update", err)
	}
	if upd.Images != nil {
		images, err := ss.uploadImages(ctx, upd.Images)
		if err != nil {
			return nil, err
		}
		upd.Images = images
	}
	fields := upd.Fields()
	if len(fields) == 0 {
		return nil, models.Invalid("no fields to update")
	}
	return ss.spots.UpdateSpot(ctx, id, fields)
}

func (ss *SpotService) DeleteSpot(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	if err := requireAdmin(actor, "delete tourist spots"); err != nil {
		return err
	}
	return ss.spots.DeleteSpot(ctx, id)
}
