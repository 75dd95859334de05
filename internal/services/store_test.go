package services

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/tourly/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memStore is an in-memory stand-in for MongodbRepo. It enforces the same
// unique keys and conditional writes as the collection indexes do.
type memStore struct {
	mu     sync.Mutex
	atomic bool
	fail   map[string]error

	users    map[uuid.UUID]models.User
	spots    map[primitive.ObjectID]models.TouristSpot
	apps     map[primitive.ObjectID]models.GuideApplication
	reviews  map[primitive.ObjectID]models.Review
	events   map[primitive.ObjectID]models.Event
	regs     map[primitive.ObjectID]models.EventRegistration
	threads  map[primitive.ObjectID]models.ChatThread
	messages []models.ChatMessage
	blogs    map[primitive.ObjectID]models.Blog
	comments map[primitive.ObjectID]models.Comment
	notes    []models.Notification

	ensureThreadsCalls int
}

func newMemStore(atomic bool) *memStore {
	return &memStore{
		atomic:   atomic,
		fail:     map[string]error{},
		users:    map[uuid.UUID]models.User{},
		spots:    map[primitive.ObjectID]models.TouristSpot{},
		apps:     map[primitive.ObjectID]models.GuideApplication{},
		reviews:  map[primitive.ObjectID]models.Review{},
		events:   map[primitive.ObjectID]models.Event{},
		regs:     map[primitive.ObjectID]models.EventRegistration{},
		threads:  map[primitive.ObjectID]models.ChatThread{},
		blogs:    map[primitive.ObjectID]models.Blog{},
		comments: map[primitive.ObjectID]models.Comment{},
	}
}

func (s *memStore) failOn(op string, err error) { s.fail[op] = err }

func (s *memStore) injected(op string) error { return s.fail[op] }

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// Transactor

func (s *memStore) Atomic() bool { return s.atomic }

func (s *memStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.atomic {
		return fn(ctx)
	}
	s.mu.Lock()
	users := make(map[uuid.UUID]models.User, len(s.users))
	for k, v := range s.users {
		users[k] = v
	}
	apps := make(map[primitive.ObjectID]models.GuideApplication, len(s.apps))
	for k, v := range s.apps {
		apps[k] = v
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.users, s.apps = users, apps
		s.mu.Unlock()
		return err
	}
	return nil
}

// ProfileRepo

func (s *memStore) CreateProfile(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return models.Conflict("user already exists")
	}
	s.users[user.ID] = *user
	return nil
}

func (s *memStore) GetProfile(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (s *memStore) GetOrCreateProfile(ctx context.Context, id uuid.UUID, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		u = models.User{ID: id, Email: email, Role: models.RoleUser, CreatedAt: time.Now().UTC()}
		s.users[id] = u
	}
	return &u, nil
}

func (s *memStore) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(fields) == 0 {
		return nil, models.Invalid("no fields to update")
	}
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	if v, ok := fields["username"].(string); ok {
		u.Username = v
	}
	if v, ok := fields["fullname"].(string); ok {
		u.FullName = v
	}
	if v, ok := fields["bio"].(string); ok {
		u.Bio = v
	}
	if v, ok := fields["role"].(string); ok {
		u.Role = v
	}
	s.users[id] = u
	return &u, nil
}

func (s *memStore) SetUserRole(ctx context.Context, id uuid.UUID, role string) error {
	if err := s.injected("SetUserRole"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Role = role
	s.users[id] = u
	return nil
}

// SpotsRepo

func (s *memStore) CreateSpot(ctx context.Context, spot *models.TouristSpot) (*models.TouristSpot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spot.ID.IsZero() {
		spot.ID = primitive.NewObjectID()
	}
	s.spots[spot.ID] = *spot
	return spot, nil
}

func (s *memStore) GetSpot(ctx context.Context, id primitive.ObjectID) (*models.TouristSpot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spot, ok := s.spots[id]
	if !ok {
		return nil, models.ErrSpotNotFound
	}
	return &spot, nil
}

func (s *memStore) ListSpots(ctx context.Context, region string, offset, limit int) ([]*models.TouristSpot, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.TouristSpot
	for _, spot := range s.spots {
		spot := spot
		if region == "" || spot.Region == region {
			out = append(out, &spot)
		}
	}
	return page(out, offset, limit), len(out), nil
}

func (s *memStore) UpdateSpot(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.TouristSpot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spot, ok := s.spots[id]
	if !ok {
		return nil, models.ErrSpotNotFound
	}
	if v, ok := fields["name"].(string); ok {
		spot.Name = v
	}
	if v, ok := fields["region"].(string); ok {
		spot.Region = v
	}
	s.spots[id] = spot
	return &spot, nil
}

func (s *memStore) DeleteSpot(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spots[id]; !ok {
		return models.ErrSpotNotFound
	}
	delete(s.spots, id)
	return nil
}

// GuideApplicationRepo

func (s *memStore) CreateApplication(ctx context.Context, app *models.GuideApplication) (*models.GuideApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apps {
		if a.UserID == app.UserID && a.Status == models.ApplicationPending {
			return nil, models.ErrPendingApplication
		}
	}
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	s.apps[app.ID] = *app
	return app, nil
}

func (s *memStore) GetApplication(ctx context.Context, id primitive.ObjectID) (*models.GuideApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, models.ErrApplicationNotFound
	}
	return &a, nil
}

func (s *memStore) FindPendingApplication(ctx context.Context, userID uuid.UUID) (*models.GuideApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apps {
		if a.UserID == userID && a.Status == models.ApplicationPending {
			return &a, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListApplications(ctx context.Context, status string, offset, limit int) ([]*models.GuideApplication, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.GuideApplication
	for _, a := range s.apps {
		a := a
		if status == "" || a.Status == status {
			out = append(out, &a)
		}
	}
	return page(out, offset, limit), len(out), nil
}

func (s *memStore) ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.GuideApplication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.GuideApplication{}
	for _, a := range s.apps {
		a := a
		if a.UserID == userID {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (s *memStore) MarkApplicationReviewed(ctx context.Context, id primitive.ObjectID, status string, reviewer uuid.UUID, notes string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Status != models.ApplicationPending {
		return models.InvalidState("guide application has already been reviewed")
	}
	a.Status = status
	a.ReviewedBy = &reviewer
	a.ReviewedAt = &at
	a.ReviewNotes = notes
	s.apps[id] = a
	return nil
}

func (s *memStore) RevertApplicationReview(ctx context.Context, id primitive.ObjectID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[id]
	if !ok || a.Status != status {
		return models.InvalidState("guide application is not in the expected state")
	}
	a.Status = models.ApplicationPending
	a.ReviewedBy, a.ReviewedAt, a.ReviewNotes = nil, nil, ""
	s.apps[id] = a
	return nil
}

// ReviewsRepo and AggregateRepo

func (s *memStore) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.Subject() == review.Subject() && r.AuthorID == review.AuthorID {
			return nil, models.ErrAlreadyReviewed
		}
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	s.reviews[review.ID] = *review
	return review, nil
}

func (s *memStore) GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, models.ErrReviewNotFound
	}
	return &r, nil
}

func (s *memStore) FindReviewByAuthor(ctx context.Context, subject models.SubjectRef, authorID uuid.UUID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.Subject() == subject && r.AuthorID == authorID {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memStore) UpdateReview(ctx context.Context, id primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, models.ErrReviewNotFound
	}
	r.Rating, r.Comment = rating, comment
	s.reviews[id] = r
	return &r, nil
}

func (s *memStore) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return models.ErrReviewNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *memStore) ListReviewsBySubject(ctx context.Context, subject models.SubjectRef, offset, limit int) ([]*models.Review, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Review
	for _, r := range s.reviews {
		r := r
		if r.Subject() == subject {
			out = append(out, &r)
		}
	}
	return page(out, offset, limit), len(out), nil
}

func (s *memStore) ListReviewsByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Review{}
	for _, r := range s.reviews {
		r := r
		if r.AuthorID == authorID {
			out = append(out, &r)
		}
	}
	return out, nil
}

func (s *memStore) RatingsForSubject(ctx context.Context, subject models.SubjectRef) ([]int, error) {
	if err := s.injected("RatingsForSubject"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for _, r := range s.reviews {
		if r.Subject() == subject {
			out = append(out, r.Rating)
		}
	}
	return out, nil
}

func (s *memStore) SetSubjectAggregate(ctx context.Context, subject models.SubjectRef, agg models.RatingAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch subject.Type {
	case models.SubjectSpot:
		if spot, ok := s.spots[subject.ID]; ok {
			spot.AvgRating, spot.ReviewCount = agg.AvgRating, agg.ReviewCount
			s.spots[subject.ID] = spot
		}
	case models.SubjectGuide:
		if app, ok := s.apps[subject.ID]; ok {
			app.AvgRating, app.ReviewCount = agg.AvgRating, agg.ReviewCount
			s.apps[subject.ID] = app
		}
	}
	return nil
}

// EventsRepo

func (s *memStore) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	s.events[event.ID] = *event
	return event, nil
}

func (s *memStore) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	e.InterestedUsers = slices.Clone(e.InterestedUsers)
	e.BookmarkedBy = slices.Clone(e.BookmarkedBy)
	return &e, nil
}

func (s *memStore) ListEvents(ctx context.Context, filter models.EventFilter, offset, limit int) ([]*models.Event, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Event
	for _, e := range s.events {
		e := e
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.CreatedBy != uuid.Nil && e.CreatedBy != filter.CreatedBy {
			continue
		}
		out = append(out, &e)
	}
	return page(out, offset, limit), len(out), nil
}

func (s *memStore) ListEventIDsByCreator(ctx context.Context, creator uuid.UUID) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []primitive.ObjectID
	for id, e := range s.events {
		if e.CreatedBy == creator {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memStore) UpdateEvent(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	if v, ok := fields["title"].(string); ok {
		e.Title = v
	}
	if v, ok := fields["status"].(string); ok {
		e.Status = v
	}
	if v, ok := fields["starts_at"].(time.Time); ok {
		e.StartsAt = v
	}
	if v, ok := fields["ends_at"].(time.Time); ok {
		e.EndsAt = v
	}
	s.events[id] = e
	return &e, nil
}

func (s *memStore) DeleteEvent(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[id]; !ok {
		return models.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *memStore) SetEventMembership(ctx context.Context, id primitive.ObjectID, field string, userID uuid.UUID, member bool) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	set := &e.InterestedUsers
	if field == models.EventBookmarkedField {
		set = &e.BookmarkedBy
	}
	*set = slices.DeleteFunc(slices.Clone(*set), func(u uuid.UUID) bool { return u == userID })
	if member {
		*set = append(*set, userID)
	}
	s.events[id] = e
	return &e, nil
}

// RegistrationsRepo

func (s *memStore) CreateRegistration(ctx context.Context, reg *models.EventRegistration) (*models.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.EventID == reg.EventID && r.UserID == reg.UserID {
			return nil, models.ErrAlreadyRegistered
		}
	}
	if reg.ID.IsZero() {
		reg.ID = primitive.NewObjectID()
	}
	s.regs[reg.ID] = *reg
	return reg, nil
}

func (s *memStore) FindRegistration(ctx context.Context, eventID primitive.ObjectID, userID uuid.UUID) (*models.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.regs {
		if r.EventID == eventID && r.UserID == userID {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListRegistrationsByEvents(ctx context.Context, eventIDs []primitive.ObjectID) ([]*models.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.EventRegistration{}
	for _, r := range s.regs {
		r := r
		if slices.Contains(eventIDs, r.EventID) {
			out = append(out, &r)
		}
	}
	return out, nil
}

func (s *memStore) ListRegistrationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.EventRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.EventRegistration{}
	for _, r := range s.regs {
		r := r
		if r.UserID == userID {
			out = append(out, &r)
		}
	}
	return out, nil
}

func (s *memStore) CountParticipants(ctx context.Context, eventID primitive.ObjectID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, r := range s.regs {
		if r.EventID == eventID {
			total += r.Participants
		}
	}
	return total, nil
}

// ThreadsRepo and MessagesRepo

func (s *memStore) upsertThread(t *models.ChatThread) (models.ChatThread, bool) {
	for _, existing := range s.threads {
		if existing.EventID == t.EventID && existing.UserID == t.UserID {
			return existing, false
		}
	}
	created := *t
	created.ID = primitive.NewObjectID()
	s.threads[created.ID] = created
	return created, true
}

func (s *memStore) EnsureThread(ctx context.Context, thread *models.ChatThread) (*models.ChatThread, error) {
	if err := s.injected("EnsureThread"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, _ := s.upsertThread(thread)
	return &t, nil
}

func (s *memStore) EnsureThreads(ctx context.Context, threads []*models.ChatThread) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureThreadsCalls++
	created := 0
	for _, t := range threads {
		if _, ok := s.upsertThread(t); ok {
			created++
		}
	}
	return created, nil
}

func (s *memStore) GetThread(ctx context.Context, id primitive.ObjectID) (*models.ChatThread, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	if !ok {
		return nil, models.ErrThreadNotFound
	}
	return &t, nil
}

func (s *memStore) listThreads(match func(models.ChatThread) bool) []*models.ChatThread {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.ChatThread{}
	for _, t := range s.threads {
		t := t
		if match(t) {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out
}

func (s *memStore) ListThreadsByGuide(ctx context.Context, guideID uuid.UUID) ([]*models.ChatThread, error) {
	return s.listThreads(func(t models.ChatThread) bool { return t.GuideID == guideID }), nil
}

func (s *memStore) ListThreadsByUser(ctx context.Context, userID uuid.UUID) ([]*models.ChatThread, error) {
	return s.listThreads(func(t models.ChatThread) bool { return t.UserID == userID }), nil
}

func (s *memStore) TouchThread(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[id]
	if !ok {
		return models.ErrThreadNotFound
	}
	if at.After(t.LastMessageAt) {
		t.LastMessageAt = at
	}
	s.threads[id] = t
	return nil
}

func (s *memStore) CreateMessage(ctx context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	s.messages = append(s.messages, *msg)
	return msg, nil
}

func (s *memStore) ListMessages(ctx context.Context, threadID primitive.ObjectID, offset, limit int) ([]*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.ChatMessage
	for i := range s.messages {
		if s.messages[i].ThreadID == threadID {
			m := s.messages[i]
			out = append(out, &m)
		}
	}
	return page(out, offset, limit), nil
}

// BlogsRepo

func (s *memStore) CreateBlog(ctx context.Context, blog *models.Blog) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if blog.ID.IsZero() {
		blog.ID = primitive.NewObjectID()
	}
	s.blogs[blog.ID] = *blog
	return blog, nil
}

func (s *memStore) GetBlog(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blogs[id]
	if !ok {
		return nil, models.ErrBlogNotFound
	}
	return &b, nil
}

func (s *memStore) ListBlogs(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*models.Blog, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Blog
	for _, b := range s.blogs {
		b := b
		if authorID == uuid.Nil || b.AuthorID == authorID {
			out = append(out, &b)
		}
	}
	return page(out, offset, limit), len(out), nil
}

func (s *memStore) UpdateBlog(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blogs[id]
	if !ok {
		return nil, models.ErrBlogNotFound
	}
	if v, ok := fields["title"].(string); ok {
		b.Title = v
	}
	if v, ok := fields["content"].(string); ok {
		b.Content = v
	}
	s.blogs[id] = b
	return &b, nil
}

func (s *memStore) DeleteBlog(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blogs[id]; !ok {
		return models.ErrBlogNotFound
	}
	delete(s.blogs, id)
	return nil
}

// CommentsRepo

func (s *memStore) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if comment.ID.IsZero() {
		comment.ID = primitive.NewObjectID()
	}
	s.comments[comment.ID] = *comment
	return comment, nil
}

func (s *memStore) GetComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	return &c, nil
}

func (s *memStore) ListComments(ctx context.Context, parentType models.ParentType, parentID primitive.ObjectID, offset, limit int) ([]*models.Comment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Comment
	for _, c := range s.comments {
		c := c
		if c.ParentType == parentType && c.ParentID == parentID {
			out = append(out, &c)
		}
	}
	return page(out, offset, limit), len(out), nil
}

func (s *memStore) UpdateComment(ctx context.Context, id primitive.ObjectID, content string) (*models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, models.ErrCommentNotFound
	}
	c.Content = content
	s.comments[id] = c
	return &c, nil
}

func (s *memStore) DeleteComment(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return models.ErrCommentNotFound
	}
	delete(s.comments, id)
	return nil
}

func (s *memStore) DeleteCommentsByParent(ctx context.Context, parentType models.ParentType, parentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.comments {
		if c.ParentType == parentType && c.ParentID == parentID {
			delete(s.comments, id)
		}
	}
	return nil
}

// NotificationsRepo

func (s *memStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	s.notes = append(s.notes, *n)
	return nil
}

func (s *memStore) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]*models.Notification, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for i := range s.notes {
		n := s.notes[i]
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, &n)
		}
	}
	return page(out, offset, limit), len(out), nil
}

func (s *memStore) MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notes {
		if s.notes[i].ID == id && s.notes[i].UserID == userID {
			s.notes[i].Read = true
			return nil
		}
	}
	return models.NotFound("notification not found")
}

// MockNotifier records notifications handed to the dispatcher.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(n models.Notification) {
	m.Called(n)
}

func adminActor() models.Actor { return models.Actor{ID: uuid.New(), Role: models.RoleAdmin} }

func userActor() models.Actor { return models.Actor{ID: uuid.New(), Role: models.RoleUser} }

func (s *memStore) seedUser(actor models.Actor) {
	s.users[actor.ID] = models.User{ID: actor.ID, Role: actor.Role}
}

func (s *memStore) seedSpot(createdBy uuid.UUID) primitive.ObjectID {
	id := primitive.NewObjectID()
	s.spots[id] = models.TouristSpot{ID: id, Name: "Kakum", Location: "Central", Region: "Central", CreatedBy: createdBy}
	return id
}

func (s *memStore) seedEvent(createdBy uuid.UUID, status string) primitive.ObjectID {
	id := primitive.NewObjectID()
	start := time.Now().Add(24 * time.Hour)
	s.events[id] = models.Event{
		ID:              id,
		CreatedBy:       createdBy,
		Title:           "Cape Coast walk",
		Location:        "Cape Coast",
		StartsAt:        start,
		EndsAt:          start.Add(3 * time.Hour),
		Status:          status,
		InterestedUsers: []uuid.UUID{},
		BookmarkedBy:    []uuid.UUID{},
	}
	return id
}
