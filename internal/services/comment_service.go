package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentService struct {
	comments models.CommentsRepo
	blogs    models.BlogsRepo
	events   models.EventsRepo
	notifier Notifier
	logger   *slog.Logger
}

func NewCommentService(comments models.CommentsRepo, blogs models.BlogsRepo, events models.EventsRepo, notifier Notifier, logger *slog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		blogs:    blogs,
		events:   events,
		notifier: notifierOrNoop(notifier),
		logger:   logger,
	}
}

// commentParent is the parent document of a comment together with the
// relation under which its owner may moderate the thread.
type commentParent struct {
	res   models.Ownable
	rel   models.Relation
	owner uuid.UUID
}

func (cs *CommentService) parent(ctx context.Context, actor models.Actor, parentType models.ParentType, id primitive.ObjectID) (*commentParent, error) {
	switch parentType {
	case models.ParentBlog:
		blog, err := cs.blogs.GetBlog(ctx, id)
		if err != nil {
			return nil, err
		}
		return &commentParent{res: blog, rel: models.RelationOwner, owner: blog.AuthorID}, nil
	case models.ParentEvent:
		event, err := cs.events.GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		if !canSeeEvent(actor, event) {
			return nil, models.ErrEventNotFound
		}
		return &commentParent{res: event, rel: models.RelationCreator, owner: event.CreatedBy}, nil
	}
	return nil, models.Invalid(fmt.Sprintf("unknown comment parent %q", parentType))
}

func (cs *CommentService) CreateComment(ctx context.Context, actor models.Actor, parentType models.ParentType, parentID primitive.ObjectID, content string) (*models.Comment, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	p, err := cs.parent(ctx, actor, parentType, parentID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment := &models.Comment{
		ParentType: parentType,
		ParentID:   parentID,
		AuthorID:   actor.ID,
		Content:    strings.TrimSpace(content),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := models.Validate.Struct(comment); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid comment", err)
	}
	created, err := cs.comments.CreateComment(ctx, comment)
	if err != nil {
		return nil, err
	}

	if p.owner != uuid.Nil && p.owner != actor.ID {
		cs.notifier.Notify(models.Notification{
			UserID:    p.owner,
			Kind:      models.NotifyNewComment,
			Title:     fmt.Sprintf("New comment on your %s", parentType),
			Body:      created.Content,
			RefType:   string(parentType),
			RefID:     parentID.Hex(),
			CreatedAt: now,
		})
	}
	return created, nil
}

func (cs *CommentService) ListComments(ctx context.Context, actor models.Actor, parentType models.ParentType, parentID primitive.ObjectID, offset, limit int) ([]*models.Comment, int, error) {
	if offset < 0 || limit <= 0 {
		return nil, 0, models.Invalid("invalid offset or limit")
	}
	if _, err := cs.parent(ctx, actor, parentType, parentID); err != nil {
		return nil, 0, err
	}
	return cs.comments.ListComments(ctx, parentType, parentID, offset, limit)
}

// authorize applies the union rule. A parent that has since been deleted
// leaves only the author and admins.
func (cs *CommentService) authorize(ctx context.Context, actor models.Actor, comment *models.Comment, action string) error {
	var parent models.Ownable
	var rel models.Relation
	p, err := cs.parent(ctx, actor, comment.ParentType, comment.ParentID)
	switch {
	case err == nil:
		parent, rel = p.res, p.rel
	case !models.IsDomainError(err, models.ErrCodeNotFound):
		return err
	}
	return AuthorizeChild(actor, comment, parent, rel, action)
}

func (cs *CommentService) UpdateComment(ctx context.Context, actor models.Actor, id primitive.ObjectID, content string) (*models.Comment, error) {
	comment, err := cs.comments.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cs.authorize(ctx, actor, comment, "edit this comment"); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if err := models.Validate.Var(content, "required,min=1,max=2000"); err != nil {
		return nil, models.WrapError(models.ErrCodeInvalid, "invalid comment", err)
	}
	return cs.comments.UpdateComment(ctx, id, content)
}

func (cs *CommentService) DeleteComment(ctx context.Context, actor models.Actor, id primitive.ObjectID) error {
	comment, err := cs.comments.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if err := cs.authorize(ctx, actor, comment, "delete this comment"); err != nil {
		return err
	}
	return cs.comments.DeleteComment(ctx, id)
}
