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

type GuideService struct {
	apps   models.GuideApplicationRepo
	users  models.ProfileRepo
	tx     models.Transactor
	logger *slog.Logger
	now    func() time.Time
}

func NewGuideService(apps models.GuideApplicationRepo, users models.ProfileRepo, tx models.Transactor, logger *slog.Logger) *GuideService {
	return &GuideService{
		apps:   apps,
		users:  users,
		tx:     tx,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Apply files a new pending application. Earlier approved or rejected
// applications do not block a new one; a pending one does.
func (gs *GuideService) Apply(ctx context.Context, actor models.Actor, app *models.GuideApplication) (*models.GuideApplication, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	pending, err := gs.apps.FindPendingApplication(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, models.ErrPendingApplication
	}

	now := gs.now()
	app.ID = primitive.NilObjectID
	app.UserID = actor.ID
	app.FullName = helpers.StringTrim(app.FullName)
	app.Languages = helpers.RemoveDuplicates(app.Languages)
	app.Regions = helpers.RemoveDuplicates(app.Regions)
	app.Status = models.ApplicationPending
	app.ReviewedBy = nil
	app.ReviewedAt = nil
	app.ReviewNotes = ""
	app.AvgRating = 0
	app.ReviewCount = 0
	app.CreatedAt = now
	app.UpdatedAt = now
	if err := models.Validate.Struct(app); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid guide application", err)
	}

	// the partial unique index settles two concurrent applies
	return gs.apps.CreateApplication(ctx, app)
}

func (gs *GuideService) pendingForReview(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.GuideApplication, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, models.Forbidden("only admins can review guide applications")
	}
	app, err := gs.apps.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationPending {
		return nil, models.InvalidState(fmt.Sprintf("guide application is already %s", app.Status))
	}
	return app, nil
}

// Approve marks the application approved and promotes its user to guide.
// Both writes commit together or not at all.
func (gs *GuideService) Approve(ctx context.Context, actor models.Actor, id primitive.ObjectID, notes string) (*models.GuideApplication, error) {
	app, err := gs.pendingForReview(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	at := gs.now()
	err = gs.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := gs.apps.MarkApplicationReviewed(ctx, id, models.ApplicationApproved, actor.ID, notes, at); err != nil {
			return err
		}
		if err := gs.users.SetUserRole(ctx, app.UserID, models.RoleGuide); err != nil {
			if !gs.tx.Atomic() {
				gs.revert(ctx, id)
			}
			return fmt.Errorf("failed to promote user to guide: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	gs.logger.Info("guide application approved",
		"application_id", id.Hex(),
		"user_id", app.UserID,
		"reviewed_by", actor.ID,
	)
	return reviewed(app, models.ApplicationApproved, actor, notes, at), nil
}

// revert undoes the status write when the store cannot roll it back itself.
func (gs *GuideService) revert(ctx context.Context, id primitive.ObjectID) {
	if err := gs.apps.RevertApplicationReview(ctx, id, models.ApplicationApproved); err != nil {
		gs.logger.Error("failed to revert guide application after promotion failure",
			"application_id", id.Hex(),
			"error", err,
		)
	}
}

func (gs *GuideService) Reject(ctx context.Context, actor models.Actor, id primitive.ObjectID, notes string) (*models.GuideApplication, error) {
	app, err := gs.pendingForReview(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	at := gs.now()
	if err := gs.apps.MarkApplicationReviewed(ctx, id, models.ApplicationRejected, actor.ID, notes, at); err != nil {
		return nil, err
	}
	return reviewed(app, models.ApplicationRejected, actor, notes, at), nil
}

func reviewed(app *models.GuideApplication, status string, actor models.Actor, notes string, at time.Time) *models.GuideApplication {
	reviewer := actor.ID
	app.Status = status
	app.ReviewedBy = &reviewer
	app.ReviewedAt = &at
	app.ReviewNotes = notes
	app.UpdatedAt = at
	return app
}

// GetApplication is visible to its applicant and to admins.
func (gs *GuideService) GetApplication(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.GuideApplication, error) {
	app, err := gs.apps.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, app, models.RelationOwner, "view this application"); err != nil {
		return nil, err
	}
	return app, nil
}

func (gs *GuideService) ListApplications(ctx context.Context, actor models.Actor, status string, offset, limit int) ([]*models.GuideApplication, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, models.Forbidden("only admins can list guide applications")
	}
	switch status {
	case "", models.ApplicationPending, models.ApplicationApproved, models.ApplicationRejected:
	default:
		return nil, 0, models.Invalid(fmt.Sprintf("unknown application status %q", status))
	}
	return gs.apps.ListApplications(ctx, status, offset, limit)
}

func (gs *GuideService) ListMyApplications(ctx context.Context, actor models.Actor) ([]*models.GuideApplication, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	return gs.apps.ListApplicationsByUser(ctx, actor.ID)
}

// ListGuides lists approved applications, best rated first.
func (gs *GuideService) ListGuides(ctx context.Context, offset, limit int) ([]*models.GuideApplication, int, error) {
	return gs.apps.ListApplications(ctx, models.ApplicationApproved, offset, limit)
}

func (gs *GuideService) GetGuide(ctx context.Context, id primitive.ObjectID) (*models.GuideApplication, error) {
	app, err := gs.apps.GetApplication(ctx, id)
	if err != nil {
		if models.IsDomainError(err, models.ErrCodeNotFound) {
			return nil, models.ErrGuideNotFound
		}
		return nil, err
	}
	if app.Status != models.ApplicationApproved {
		return nil, models.ErrGuideNotFound
	}
	return app, nil
}
