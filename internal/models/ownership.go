package models

import "github.com/google/uuid"

// Relation names how a user relates to a resource for mutation checks.
type Relation string

const (
	RelationOwner       Relation = "owner"
	RelationCreator     Relation = "creator"
	RelationParticipant Relation = "participant"
)

// Ownable is implemented by every mutable resource. It maps a relation onto
// the resource's ownership field(s); an unknown relation yields nil.
type Ownable interface {
	OwnerIDs(rel Relation) []uuid.UUID
}

func (r *Review) OwnerIDs(rel Relation) []uuid.UUID {
	if rel == RelationOwner {
		return []uuid.UUID{r.AuthorID}
	}
	return nil
}

func (b *Blog) OwnerIDs(rel Relation) []uuid.UUID {
	if rel == RelationOwner {
		return []uuid.UUID{b.AuthorID}
	}
	return nil
}

func (c *Comment) OwnerIDs(rel Relation) []uuid.UUID {
	if rel == RelationOwner {
		return []uuid.UUID{c.AuthorID}
	}
	return nil
}

func (e *Event) OwnerIDs(rel Relation) []uuid.UUID {
	if rel == RelationCreator {
		return []uuid.UUID{e.CreatedBy}
	}
	return nil
}

func (s *TouristSpot) OwnerIDs(rel Relation) []uuid.UUID {
	if rel == RelationCreator {
		return []uuid.UUID{s.CreatedBy}
	}
	return nil
}

func (a *GuideApplication) OwnerIDs(rel Relation) []uuid.UUID {
	if rel == RelationOwner {
		return []uuid.UUID{a.UserID}
	}
	return nil
}

func (r *EventRegistration) OwnerIDs(rel Relation) []uuid.UUID {
	if rel == RelationOwner {
		return []uuid.UUID{r.UserID}
	}
	return nil
}

func (u *User) OwnerIDs(rel Relation) []uuid.UUID {
	if rel == RelationOwner {
		return []uuid.UUID{u.ID}
	}
	return nil
}

// Both the guide and the registrant participate in a thread.
func (t *ChatThread) OwnerIDs(rel Relation) []uuid.UUID {
	switch rel {
	case RelationParticipant:
		return []uuid.UUID{t.GuideID, t.UserID}
	case RelationCreator:
		return []uuid.UUID{t.GuideID}
	case RelationOwner:
		return []uuid.UUID{t.UserID}
	}
	return nil
}
