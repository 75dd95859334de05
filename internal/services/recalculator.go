package services

import (
	"context"
	"fmt"

	"github.com/joshua-takyi/tourly/internal/models"
)

// Recalculator keeps a subject's avg_rating and review_count equal to the
// mean and count of its current reviews.
type Recalculator struct {
	reviews    models.ReviewsRepo
	aggregates models.AggregateRepo
}

func NewRecalculator(reviews models.ReviewsRepo, aggregates models.AggregateRepo) *Recalculator {
	return &Recalculator{reviews: reviews, aggregates: aggregates}
}

// ComputeAggregate returns the exact mean and count, or zero for no ratings.
func ComputeAggregate(ratings []int) models.RatingAggregate {
	if len(ratings) == 0 {
		return models.RatingAggregate{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return models.RatingAggregate{
		AvgRating:   float64(sum) / float64(len(ratings)),
		ReviewCount: len(ratings),
	}
}

// Recalculate must run after the review write that triggered it has completed.
// A subject that no longer exists is left alone.
func (r *Recalculator) Recalculate(ctx context.Context, subject models.SubjectRef) error {
	ratings, err := r.reviews.RatingsForSubject(ctx, subject)
	if err != nil {
		return fmt.Errorf("failed to read ratings for %s: %w", subject, err)
	}
	return r.aggregates.SetSubjectAggregate(ctx, subject, ComputeAggregate(ratings))
}
