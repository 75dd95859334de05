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

type EventService struct {
	events        models.EventsRepo
	registrations models.RegistrationsRepo
	comments      models.CommentsRepo
	threads       *ThreadService
	uploader      helpers.ImageUploader
	logger        *slog.Logger
	now           func() time.Time
}

func NewEventService(
	events models.EventsRepo,
	registrations models.RegistrationsRepo,
	comments models.CommentsRepo,
	threads *ThreadService,
	uploader helpers.ImageUploader,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		events:        events,
		registrations: registrations,
		comments:      comments,
		threads:       threads,
		uploader:      uploader,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RegistrationResult carries the thread opened for the registrant so clients
// can go straight to the conversation. ThreadID is nil when no thread applies
// or provisioning failed; the guide-side bootstrap fills the gap later.
type RegistrationResult struct {
	Registration *models.EventRegistration `json:"registration"`
	ThreadID     *primitive.ObjectID       `json:"thread_id,omitempty"`
}

func (es *EventService) uploadImages(ctx context.Context, images []string) ([]string, error) {
	if len(images) == 0 || es.uploader == nil {
		return images, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	urls, err := es.uploader.UploadImages(ctx, images, helpers.EventsFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to upload images: %w", err)
	}
	return urls, nil
}

// CreateEvent publishes admin events immediately; everyone else's wait for moderation.
func (es *EventService) CreateEvent(ctx context.Context, actor models.Actor, event *models.Event) (*models.Event, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	now := es.now()
	event.ID = primitive.NilObjectID
	event.CreatedBy = actor.ID
	event.Title = helpers.StringTrim(event.Title)
	event.Status = models.EventPending
	if actor.IsAdmin() {
		event.Status = models.EventApproved
	}
	event.InterestedUsers = []uuid.UUID{}
	event.BookmarkedBy = []uuid.UUID{}
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := models.Validate.Struct(event); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid event", err)
	}

	images, err := es.uploadImages(ctx, event.Images)
	if err != nil {
		return nil, err
	}
	event.Images = images
	return es.events.CreateEvent(ctx, event)
}

// UpdateEvent lets the creator or an admin edit. Only admins may touch status.
func (es *EventService) UpdateEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID, upd models.EventUpdate) (*models.Event, error) {
	event, err := es.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, event, models.RelationCreator, "edit this event"); err != nil {
		return nil, err
	}
	if upd.Status != nil {
		if !actor.IsAdmin() {
			return nil, models.Forbidden("only admins can change an event's status")
		}
		if err := checkStatusTransition(event.Status, *upd.Status); err != nil {
			return nil, err
		}
	}
	if err := models.Validate.Struct(upd); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid event update", err)
	}

	startsAt, endsAt := event.StartsAt, event.EndsAt
	if upd.StartsAt != nil {
		startsAt = *upd.StartsAt
	}
	if upd.EndsAt != nil {
		endsAt = *upd.EndsAt
	}
	if !endsAt.After(startsAt) {
		return nil, models.Invalid("event must end after it starts")
	}

	if upd.Images != nil {
		images, err := es.uploadImages(ctx, upd.Images)
		if err != nil {
			return nil, err
		}
		upd.Images = images
	}
	fields := upd.Fields()
	if len(fields) == 0 {
		return nil, models.Invalid("no fields to update")
	}
	return es.events.UpdateEvent(ctx, id, fields)
}

func (es *EventService) DeleteEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	event, err := es.events.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, event, models.RelationCreator, "delete this event"); err != nil {
		return err
	}
	if err := es.events.DeleteEvent(ctx, id); err != nil {
		return err
	}
	if err := es.comments.DeleteCommentsByParent(ctx, models.ParentEvent, id); err != nil {
		es.logger.Warn("failed to delete comments of deleted event", "event_id", id.Hex(), "error", err)
	}
	return nil
}

// SetEventStatus moderates an event. Moving back to pending is not allowed and
// setting the current status again is an InvalidState.
func (es *EventService) SetEventStatus(ctx context.Context, actor models.Actor, id primitive.ObjectID, status string) (*models.Event, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	if !actor.IsAdmin() {
		return nil, models.Forbidden("only admins can moderate events")
	}
	if err := checkStatusTransition("", status); err != nil {
		return nil, err
	}
	event, err := es.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkStatusTransition(event.Status, status); err != nil {
		return nil, err
	}
	return es.events.UpdateEvent(ctx, id, map[string]interface{}{"status": status})
}

// checkStatusTransition allows moves to approved or rejected only. Nothing
// returns to pending and setting the current status again is refused.
func checkStatusTransition(current, next string) error {
	if next != models.EventApproved && next != models.EventRejected {
		return models.Invalid(fmt.Sprintf("cannot set event status to %q", next))
	}
	if current == next {
		return models.InvalidState(fmt.Sprintf("event is already %s", next))
	}
	return nil
}

func canSeeEvent(actor models.Actor, event *models.Event) bool {
	return event.Status == models.EventApproved || CanMutate(actor, event, models.RelationCreator)
}

// GetEvent hides unapproved events from everyone but their creator and admins.
func (es *EventService) GetEvent(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error) {
	event, err := es.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSeeEvent(actor, event) {
		return nil, models.ErrEventNotFound
	}
	return event, nil
}

// ListEvents lists approved events. mine lists the actor's own events in any
// status; other status filters are for admins.
func (es *EventService) ListEvents(ctx context.Context, actor models.Actor, status string, mine bool, offset, limit int) ([]*models.Event, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.Invalid("invalid offset or limit")
	}
	switch status {
	case "", models.EventPending, models.EventApproved, models.EventRejected:
	default:
		return nil, 0, models.Invalid(fmt.Sprintf("unknown event status %q", status))
	}

	filter := models.EventFilter{Status: status}
	switch {
	case mine:
		if actor.IsZero() {
			return nil, 0, models.ErrUnauthorized
		}
		filter.CreatedBy = actor.ID
	case status == "":
		filter.Status = models.EventApproved
	case status != models.EventApproved && !actor.IsAdmin():
		return nil, 0, models.Forbidden("only admins can list unapproved events")
	}
	return es.events.ListEvents(ctx, filter, offset, limit)
}

// Register signs the actor up for an approved event and opens the chat thread
// with the event's creator.
func (es *EventService) Register(ctx context.Context, actor models.Actor, eventID primitive.ObjectID, reg *models.EventRegistration) (*RegistrationResult, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	event, err := es.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventApproved {
		return nil, models.Forbidden("registration is only open for approved events")
	}

	existing, err := es.registrations.FindRegistration(ctx, eventID, actor.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrAlreadyRegistered
	}

	reg.ID = primitive.NilObjectID
	reg.EventID = eventID
	reg.UserID = actor.ID
	reg.FullName = helpers.StringTrim(reg.FullName)
	if reg.Participants == 0 {
		reg.Participants = 1
	}
	reg.CreatedAt = es.now()
	if err := models.Validate.Struct(reg); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid registration", err)
	}
	// zero capacity means unlimited
	if event.Capacity > 0 {
		taken, err := es.registrations.CountParticipants(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if taken+reg.Participants > event.Capacity {
			return nil, models.ErrEventFull
		}
	}

	created, err := es.registrations.CreateRegistration(ctx, reg)
	if err != nil {
		return nil, err
	}
	result := &RegistrationResult{Registration: created}
	if event.CreatedBy == actor.ID {
		return result, nil
	}

	thread, err := es.threads.EnsureThread(ctx, eventID, event.CreatedBy, actor.ID)
	if err != nil {
		es.logger.Error("failed to provision chat thread after registration",
			"event_id", eventID.Hex(),
			"user_id", actor.ID,
			"error", err,
		)
		return result, nil
	}
	result.ThreadID = &thread.ID
	return result, nil
}

func (es *EventService) ListMyRegistrations(ctx context.Context, actor models.Actor) ([]*models.EventRegistration, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	return es.registrations.ListRegistrationsByUser(ctx, actor.ID)
}

func (es *EventService) ListEventRegistrations(ctx context.Context, actor models.Actor, eventID primitive.ObjectID) ([]*models.EventRegistration, error) {
	event, err := es.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, event, models.RelationCreator, "view this event's registrations"); err != nil {
		return nil, err
	}
	return es.registrations.ListRegistrationsByEvents(ctx, []primitive.ObjectID{eventID})
}
