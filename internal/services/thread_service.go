package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const bootstrapConcurrency = 4

type ThreadService struct {
	threads       models.ThreadsRepo
	messages      models.MessagesRepo
	events        models.EventsRepo
	registrations models.RegistrationsRepo
	logger        *slog.Logger
	now           func() time.Time
}

func NewThreadService(
	threads models.ThreadsRepo,
	messages models.MessagesRepo,
	events models.EventsRepo,
	registrations models.RegistrationsRepo,
	logger *slog.Logger,
) *ThreadService {
	return &ThreadService{
		threads:       threads,
		messages:      messages,
		events:        events,
		registrations: registrations,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// EnsureThread returns the thread for (eventID, userID), creating it on first use.
func (ts *ThreadService) EnsureThread(ctx context.Context, eventID primitive.ObjectID, guideID, userID uuid.UUID) (*models.ChatThread, error) {
	now := ts.now()
	return ts.threads.EnsureThread(ctx, &models.ChatThread{
		EventID:       eventID,
		GuideID:       guideID,
		UserID:        userID,
		LastMessageAt: now,
		CreatedAt:     now,
	})
}

// BootstrapGuideThreads creates the missing thread for every registration on
// the guide's events and returns how many were created. Existing threads are
// untouched, so running it repeatedly is safe.
func (ts *ThreadService) BootstrapGuideThreads(ctx context.Context, guideID uuid.UUID) (int, error) {
	eventIDs, err := ts.events.ListEventIDsByCreator(ctx, guideID)
	if err != nil {
		return 0, err
	}
	if len(eventIDs) == 0 {
		return 0, nil
	}
	regs, err := ts.registrations.ListRegistrationsByEvents(ctx, eventIDs)
	if err != nil {
		return 0, err
	}

	now := ts.now()
	byEvent := make(map[primitive.ObjectID][]*models.ChatThread)
	for _, reg := range regs {
		if reg.UserID == guideID {
			continue
		}
		byEvent[reg.EventID] = append(byEvent[reg.EventID], &models.ChatThread{
			EventID:       reg.EventID,
			GuideID:       guideID,
			UserID:        reg.UserID,
			LastMessageAt: now,
			CreatedAt:     now,
		})
	}

	var created atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bootstrapConcurrency)
	for eventID, batch := range byEvent {
		eventID, batch := eventID, batch
		g.Go(func() error {
			n, err := ts.threads.EnsureThreads(gctx, batch)
			if err != nil {
				return fmt.Errorf("event %s: %w", eventID.Hex(), err)
			}
			created.Add(int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(created.Load()), err
	}
	return int(created.Load()), nil
}

// ListGuideThreads backfills missing threads before listing the guide's side.
func (ts *ThreadService) ListGuideThreads(ctx context.Context, actor models.Actor) ([]*models.ChatThread, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	created, err := ts.BootstrapGuideThreads(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to bootstrap chat threads: %w", err)
	}
	if created > 0 {
		ts.logger.Info("chat threads bootstrapped", "guide_id", actor.ID, "created", created)
	}
	return ts.threads.ListThreadsByGuide(ctx, actor.ID)
}

func (ts *ThreadService) ListUserThreads(ctx context.Context, actor models.Actor) ([]*models.ChatThread, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	return ts.threads.ListThreadsByUser(ctx, actor.ID)
}

func (ts *ThreadService) GetThread(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.ChatThread, error) {
	thread, err := ts.threads.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, thread, models.RelationParticipant, "access this conversation"); err != nil {
		return nil, err
	}
	return thread, nil
}

func (ts *ThreadService) PostMessage(ctx context.Context, actor models.Actor, threadID primitive.ObjectID, body string) (*models.ChatMessage, error) {
	thread, err := ts.GetThread(ctx, actor, threadID)
	if err != nil {
		return nil, err
	}
	msg := &models.ChatMessage{
		ThreadID:  thread.ID,
		SenderID:  actor.ID,
		Body:      strings.TrimSpace(body),
		CreatedAt: ts.now(),
	}
	if err := models.Validate.Struct(msg); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid message", err)
	}
	created, err := ts.messages.CreateMessage(ctx, msg)
	if err != nil {
		return nil, err
	}
	if err := ts.threads.TouchThread(ctx, thread.ID, created.CreatedAt); err != nil {
		ts.logger.Warn("failed to bump thread activity", "thread_id", thread.ID.Hex(), "error", err)
	}
	return created, nil
}

func (ts *ThreadService) ListMessages(ctx context.Context, actor models.Actor, threadID primitive.ObjectID, offset, limit int) ([]*models.ChatMessage, error) {
	thread, err := ts.GetThread(ctx, actor, threadID)
	if err != nil {
		return nil, err
	}
	return ts.messages.ListMessages(ctx, thread.ID, offset, limit)
}
