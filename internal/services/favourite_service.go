package services

import (
	"context"
	"slices"

	"github.com/joshua-takyi/tourly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToggleInterest flips the actor's membership in the event's interested set.
func (es *EventService) ToggleInterest(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error) {
	return es.toggleMembership(ctx, actor, id, models.EventInterestedField)
}

// ToggleBookmark flips the actor's membership in the event's bookmark set.
func (es *EventService) ToggleBookmark(ctx context.Context, actor models.Actor, id primitive.ObjectID) (*models.Event, error) {
	return es.toggleMembership(ctx, actor, id, models.EventBookmarkedField)
}

func (es *EventService) toggleMembership(ctx context.Context, actor models.Actor, id primitive.ObjectID, field string) (*models.Event, error) {
	if actor.IsZero() {
		return nil, models.ErrUnauthorized
	}
	event, err := es.GetEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	members := event.InterestedUsers
	if field == models.EventBookmarkedField {
		members = event.BookmarkedBy
	}
	join := !slices.Contains(members, actor.ID)
	return es.events.SetEventMembership(ctx, id, field, actor.ID, join)
}
