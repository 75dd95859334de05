package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

type ReviewService struct {
	reviews  models.ReviewsRepo
	spots    models.SpotsRepo
	guides   models.GuideApplicationRepo
	recalc   *Recalculator
	notifier Notifier
	logger   *slog.Logger
}

func NewReviewService(
	reviews models.ReviewsRepo,
	spots models.SpotsRepo,
	guides models.GuideApplicationRepo,
	recalc *Recalculator,
	notifier Notifier,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		spots:    spots,
		guides:   guides,
		recalc:   recalc,
		notifier: notifierOrNoop(notifier),
		logger:   logger,
	}
}

// subjectOwner resolves the user who owns a reviewable subject. Guides are
// only reviewable through an approved application.
func (rs *ReviewService) subjectOwner(ctx context.Context, subject models.SubjectRef) (uuid.UUID, error) {
	switch subject.Type {
	case models.SubjectSpot:
		spot, err := rs.spots.GetSpot(ctx, subject.ID)
		if err != nil {
			return uuid.Nil, err
		}
		return spot.CreatedBy, nil
	case models.SubjectGuide:
		app, err := rs.guides.GetApplication(ctx, subject.ID)
		if err != nil {
			if models.IsDomainError(err, models.ErrCodeNotFound) {
				return uuid.Nil, models.ErrGuideNotFound
			}
			return uuid.Nil, err
		}
		if app.Status != models.ApplicationApproved {
			return uuid.Nil, models.ErrGuideNotFound
		}
		return app.UserID, nil
	}
	return uuid.Nil, models.Invalid(fmt.Sprintf("unknown review subject %q", subject.Type))
}

// recalculate logs and swallows failures; the review write has already happened.
func (rs *ReviewService) recalculate(ctx context.Context, subject models.SubjectRef) {
	if err := rs.recalc.Recalculate(ctx, subject); err != nil {
		rs.logger.Error("rating recalculation failed",
			"subject", subject.String(),
			"error", err,
		)
	}
}

func (rs *ReviewService) CreateReview(ctx context.Context, actor models.Actor, subject models.SubjectRef, in ReviewInput) (*models.Review, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	owner, err := rs.subjectOwner(ctx, subject)
	if err != nil {
		return nil, err
	}
	if subject.Type == models.SubjectGuide && owner == actor.ID {
		return nil, models.Forbidden("guides cannot review themselves")
	}

	existing, err := rs.reviews.FindReviewByAuthor(ctx, subject, actor.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	review := &models.Review{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		AuthorID:    actor.ID,
		Rating:      in.Rating,
		Comment:     in.Comment,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := models.Validate.Struct(review); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid review", err)
	}

	// (subject, author) is unique in the store too
	created, err := rs.reviews.CreateReview(ctx, review)
	if err != nil {
		return nil, err
	}
	rs.recalculate(ctx, subject)

	if owner != uuid.Nil && owner != actor.ID {
		rs.notifier.Notify(models.Notification{
			UserID:    owner,
			Kind:      models.NotifyNewReview,
			Title:     fmt.Sprintf("New %d-star review", created.Rating),
			Body:      created.Comment,
			RefType:   string(subject.Type),
			RefID:     subject.ID.Hex(),
			CreatedAt: now,
		})
	}
	return created, nil
}

// UpdateReview is author-only; admins cannot edit someone else's review.
func (rs *ReviewService) UpdateReview(ctx context.Context, actor models.Actor, id primitive.ObjectID, in ReviewInput) (*models.Review, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	review, err := rs.reviews.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	if !Owns(actor, review, models.RelationOwner) {
		return nil, models.Forbidden("only the author can edit this review")
	}

	candidate := *review
	candidate.Rating = in.Rating
	candidate.Comment = in.Comment
	if err := models.Validate.Struct(&candidate); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid review", err)
	}

	updated, err := rs.reviews.UpdateReview(ctx, id, in.Rating, in.Comment)
	if err != nil {
		return nil, err
	}
	rs.recalculate(ctx, review.Subject())
	return updated, nil
}

// DeleteReview is allowed for the author and for admins.
func (rs *ReviewService) DeleteReview(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	review, err := rs.reviews.GetReview(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, review, models.RelationOwner, "delete this review"); err != nil {
		return err
	}
	if err := rs.reviews.DeleteReview(ctx, id); err != nil {
		return err
	}
	rs.recalculate(ctx, review.Subject())
	return nil
}

func (rs *ReviewService) ListReviews(ctx context.Context, subject models.SubjectRef, offset, limit int) ([]*models.Review, int, error) {
	if !subject.Type.Valid() {
		return nil, 0, models.Invalid(fmt.Sprintf("unknown review subject %q", subject.Type))
	}
	if offset < 0 || limit <= 0 {
		return nil, 0, models.Invalid("invalid offset or limit")
	}
	return rs.reviews.ListReviewsBySubject(ctx, subject, offset, limit)
}

func (rs *ReviewService) ListReviewsByAuthor(ctx context.Context, actor models.Actor) ([]*models.Review, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	return rs.reviews.ListReviewsByAuthor(ctx, actor.ID)
}
