package services

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/errs"
	"github.com/studybridge/peer_tutor/models"
)

const (
	SortByRating   = "rating"
	SortByReviews  = "reviews"
	SortBySessions = "sessions"
)

// TutorSummary is a tutor enriched with live statistics for discovery
// listings. Averages always come from persisted ratings.
type TutorSummary struct {
	Tutor         models.User `json:"tutor"`
	TotalSessions int64       `json:"totalSessions"`
	AverageRating float64     `json:"averageRating"`
	ReviewCount   int64       `json:"reviewCount"`
}

type TutorService struct {
	users    UserDirectory
	bookings BookingStore
	ratings  RatingStore
}

func NewTutorService(users UserDirectory, bookings BookingStore, ratings RatingStore) *TutorService {
	return &TutorService{users: users, bookings: bookings, ratings: ratings}
}

// ListTutors returns tutors (optionally filtered by subject) enriched with
// completed-session and rating aggregates. Ordering is deterministic: the
// requested key descending, ties broken by tutor id, so repeated calls with
// unchanged data return identical listings.
func (s *TutorService) ListTutors(ctx context.Context, subject, sortKey string) ([]TutorSummary, error) {
	switch sortKey {
	case "", SortByRating, SortByReviews, SortBySessions:
	default:
		return nil, errs.Invalid("invalid sort key %q", sortKey)
	}

	tutors, err := s.users.ListTutors(ctx, subject)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(tutors))
	for i, t := range tutors {
		ids[i] = t.ID
	}
	sessions, err := s.bookings.CompletedSessionCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.SummariesByTutor(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]TutorSummary, len(tutors))
	for i, t := range tutors {
		summary := ratings[t.ID]
		summaries[i] = TutorSummary{
			Tutor:         t,
			TotalSessions: sessions[t.ID],
			AverageRating: round1(summary.Average),
			ReviewCount:   summary.Count,
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		var less, equal bool
		switch sortKey {
		case SortByReviews:
			less, equal = a.ReviewCount > b.ReviewCount, a.ReviewCount == b.ReviewCount
		case SortBySessions:
			less, equal = a.TotalSessions > b.TotalSessions, a.TotalSessions == b.TotalSessions
		default:
			less, equal = a.AverageRating > b.AverageRating, a.AverageRating == b.AverageRating
		}
		if equal {
			return a.Tutor.ID.String() < b.Tutor.ID.String()
		}
		return less
	})

	return summaries, nil
}

// GetTutor returns a single tutor with the same enrichment as the listing.
func (s *TutorService) GetTutor(ctx context.Context, tutorID uuid.UUID) (*TutorSummary, error) {
	tutor, err := s.users.GetUser(ctx, tutorID)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, errs.NotFound("tutor not found")
		}
		return nil, err
	}
	if tutor.Role != models.RoleTutor {
		return nil, errs.NotFound("tutor not found")
	}

	sessions, err := s.bookings.CompletedSessionCounts(ctx, []uuid.UUID{tutorID})
	if err != nil {
		return nil, err
	}
	ratings, err := s.ratings.SummariesByTutor(ctx, []uuid.UUID{tutorID})
	if err != nil {
		return nil, err
	}

	summary := ratings[tutorID]
	return &TutorSummary{
		Tutor:         *tutor,
		TotalSessions: sessions[tutorID],
		AverageRating: round1(summary.Average),
		ReviewCount:   summary.Count,
	}, nil
}

type UpdateTutorProfileParams struct {
	Subjects    []string
	SlotCatalog []string
}

// UpdateProfile lets a tutor adjust their subjects and bookable slot set.
// Role is immutable; historical ratings keep their snapshotted subject.
func (s *TutorService) UpdateProfile(ctx context.Context, tutorID uuid.UUID, params UpdateTutorProfileParams) (*models.User, error) {
	tutor, err := s.users.GetUser(ctx, tutorID)
	if err != nil {
		return nil, err
	}
	if tutor.Role != models.RoleTutor {
		return nil, errs.NotFound("tutor not found")
	}

	if params.Subjects != nil {
		tutor.Subjects = params.Subjects
	}
	if params.SlotCatalog != nil {
		tutor.SlotCatalog = params.SlotCatalog
	}
	if err := s.users.Save(ctx, tutor); err != nil {
		return nil, err
	}
	return tutor, nil
}
