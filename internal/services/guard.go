package services

import (
	"fmt"

	"github.com/joshua-takyi/tourly/internal/models"
)

// Owns reports whether actor is named by res under rel. Roles play no part.
func Owns(actor models.Actor, res models.Ownable, rel models.Relation) bool {
	if actor.IsZero() || res == nil {
		return false
	}
	for _, id := range res.OwnerIDs(rel) {
		if id == actor.ID {
			return true
		}
	}
	return false
}

// CanMutate is the single edit/delete decision: admins always pass, everyone
// else must own res under rel.
func CanMutate(actor models.Actor, res models.Ownable, rel models.Relation) bool {
	if actor.IsZero() {
		return false
	}
	return actor.IsAdmin() || Owns(actor, res, rel)
}

// CanMutateChild applies the union rule for nested resources: child author,
// parent owner, or admin. parent may be nil when it no longer exists.
func CanMutateChild(actor models.Actor, child models.Ownable, parent models.Ownable, parentRel models.Relation) bool {
	if CanMutate(actor, child, models.RelationOwner) {
		return true
	}
	return parent != nil && Owns(actor, parent, parentRel)
}

// Authorize wraps CanMutate into a FORBIDDEN error naming the attempted action.
func Authorize(actor models.Actor, res models.Ownable, rel models.Relation, action string) error {
	if actor.IsZero() {
		return models.ErrUnauthorized
	}
	if !CanMutate(actor, res, rel) {
		return models.Forbidden(fmt.Sprintf("you are not allowed to %s", action))
	}
	return nil
}

func AuthorizeChild(actor models.Actor, child models.Ownable, parent models.Ownable, parentRel models.Relation, action string) error {
	if actor.IsZero() {
		return models.ErrUnauthorized
	}
	if !CanMutateChild(actor, child, parent, parentRel) {
		return models.Forbidden(fmt.Sprintf("you are not allowed to %s", action))
	}
	return nil
}
