package handlers

import (
	"time"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/models"
	"github.com/studybridge/peer_tutor/services"
)

// Participant is the human-readable summary attached to booking and rating
// responses. Stored identity references are untouched; this is projection
// only.
type Participant struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	University string    `json:"university,omitempty"`
	Subjects   []string  `json:"subjects,omitempty"`
}

type BookingView struct {
	ID        uuid.UUID            `json:"id"`
	Learner   Participant          `json:"learner"`
	Tutor     Participant          `json:"tutor"`
	Subject   string               `json:"subject"`
	Date      string               `json:"date"`
	TimeSlot  string               `json:"time_slot"`
	Duration  int                  `json:"duration"`
	Status    models.BookingStatus `json:"status"`
	Message   *string              `json:"message,omitempty"`
	Location  string               `json:"location"`
	CreatedAt time.Time            `json:"created_at"`
}

type RatingView struct {
	ID        uuid.UUID   `json:"id"`
	BookingID uuid.UUID   `json:"booking_id"`
	Rater     Participant `json:"rater"`
	Tutor     Participant `json:"tutor"`
	Rating    int         `json:"rating"`
	Review    string      `json:"review,omitempty"`
	Subject   string      `json:"subject"`
	CreatedAt time.Time   `json:"created_at"`
}

type TutorView struct {
	Participant
	Year          string   `json:"year"`
	SlotCatalog   []string `json:"slot_catalog,omitempty"`
	TotalSessions int64    `json:"totalSessions"`
	AverageRating float64  `json:"averageRating"`
	ReviewCount   int64    `json:"reviewCount"`
}

func participantView(u *models.User) Participant {
	return Participant{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		University: u.University,
		Subjects:   u.Subjects,
	}
}

func bookingView(b *models.Booking) BookingView {
	return BookingView{
		ID:        b.ID,
		Learner:   participantView(&b.Learner),
		Tutor:     participantView(&b.Tutor),
		Subject:   b.Subject,
		Date:      b.Date.Format("2006-01-02"),
		TimeSlot:  b.TimeSlot,
		Duration:  b.Duration,
		Status:    b.Status,
		Message:   b.Message,
		Location:  b.Location,
		CreatedAt: b.CreatedAt,
	}
}

func bookingViews(bookings []models.Booking) []BookingView {
	views := make([]BookingView, len(bookings))
	for i := range bookings {
		views[i] = bookingView(&bookings[i])
	}
	return views
}

func ratingView(r *models.Rating) RatingView {
	return RatingView{
		ID:        r.ID,
		BookingID: r.BookingID,
		Rater:     participantView(&r.Rater),
		Tutor:     participantView(&r.Tutor),
		Rating:    r.Rating,
		Review:    r.Review,
		Subject:   r.Subject,
		CreatedAt: r.CreatedAt,
	}
}

func ratingViews(ratings []models.Rating) []RatingView {
	views := make([]RatingView, len(ratings))
	for i := range ratings {
		views[i] = ratingView(&ratings[i])
	}
	return views
}

func tutorView(s *services.TutorSummary) TutorView {
	return TutorView{
		Participant:   participantView(&s.Tutor),
		Year:          s.Tutor.Year,
		SlotCatalog:   s.Tutor.SlotCatalog,
		TotalSessions: s.TotalSessions,
		AverageRating: s.AverageRating,
		ReviewCount:   s.ReviewCount,
	}
}

func tutorViews(summaries []services.TutorSummary) []TutorView {
	views := make([]TutorView, len(summaries))
	for i := range summaries {
		views[i] = tutorView(&summaries[i])
	}
	return views
}
