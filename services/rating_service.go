package services

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/errs"
	"github.com/studybridge/peer_tutor/models"
)

const (
	maxReviewLength    = 500
	defaultRatingLimit = 10
)

// TutorRatingSummary is the grouped aggregate the rating store computes for
// tutor listings.
type TutorRatingSummary struct {
	Count   int64
	Average float64
}

// RatingStore is the persistence contract for ratings. Insert must enforce
// the (booking, rater) uniqueness atomically; a read-then-write check alone
// is not enough under concurrent duplicate submissions.
type RatingStore interface {
	Insert(ctx context.Context, rating *models.Rating) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Rating, error)
	FindByTutor(ctx context.Context, tutorID uuid.UUID) ([]models.Rating, error)
	FindByBookingAndRater(ctx context.Context, bookingID, raterID uuid.UUID) (*models.Rating, error)
	List(ctx context.Context, tutorID *uuid.UUID, limit int) ([]models.Rating, error)
	SummariesByTutor(ctx context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]TutorRatingSummary, error)
}

// RatingService computes per-tutor rating statistics from completed, rated
// sessions and enforces one rating per booking.
type RatingService struct {
	ratings  RatingStore
	bookings BookingStore
	notifier Notifier
}

func NewRatingService(ratings RatingStore, bookings BookingStore, notifier Notifier) *RatingService {
	return &RatingService{ratings: ratings, bookings: bookings, notifier: notifier}
}

// Submit records the learner's evaluation of a completed booking. Tutor and
// subject are snapshotted from the booking at write time.
func (s *RatingService) Submit(ctx context.Context, raterID, bookingID uuid.UUID, value int, review string) (*models.Rating, error) {
	if value < 1 || value > 5 {
		return nil, errs.Invalid("rating must be between 1 and 5")
	}
	review = strings.TrimSpace(review)
	if utf8.RuneCountInString(review) > maxReviewLength {
		return nil, errs.Invalid("review cannot exceed %d characters", maxReviewLength)
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusCompleted {
		return nil, errs.Invalid("can only rate completed sessions")
	}
	if booking.LearnerID != raterID {
		return nil, errs.Forbidden("only the learner can rate this session")
	}

	existing, err := s.ratings.FindByBookingAndRater(ctx, bookingID, raterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("you have already rated this session")
	}

	rating := &models.Rating{
		BookingID: bookingID,
		RaterID:   raterID,
		TutorID:   booking.TutorID,
		Subject:   booking.Subject,
		Rating:    value,
		Review:    review,
	}
	if err := s.ratings.Insert(ctx, rating); err != nil {
		// A concurrent duplicate loses the race at the unique index and is
		// reported the same way as the precheck hit.
		if errs.IsKind(err, errs.KindConflict) {
			return nil, errs.Conflict("you have already rated this session")
		}
		return nil, err
	}

	enriched, err := s.ratings.FindByID(ctx, rating.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(EventRatingSubmitted, enriched, booking.TutorID)
	return enriched, nil
}

// List returns ratings newest first, optionally restricted to one tutor.
func (s *RatingService) List(ctx context.Context, tutorID *uuid.UUID, limit int) ([]models.Rating, error) {
	if limit <= 0 {
		limit = defaultRatingLimit
	}
	return s.ratings.List(ctx, tutorID, limit)
}

type RatingStats struct {
	TotalRatings  int         `json:"totalRatings"`
	AverageRating float64     `json:"averageRating"`
	Distribution  map[int]int `json:"distribution"`
}

// TutorStats recomputes the tutor's aggregate from the current rating set on
// every call. Nothing is cached.
func (s *RatingService) TutorStats(ctx context.Context, tutorID uuid.UUID) (*RatingStats, error) {
	ratings, err := s.ratings.FindByTutor(ctx, tutorID)
	if err != nil {
		return nil, err
	}

	stats := &RatingStats{
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	sum := 0
	for _, r := range ratings {
		stats.TotalRatings++
		stats.Distribution[r.Rating]++
		sum += r.Rating
	}
	if stats.TotalRatings > 0 {
		stats.AverageRating = round1(float64(sum) / float64(stats.TotalRatings))
	}
	return stats, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
