package services

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/errs"
	"github.com/studybridge/peer_tutor/models"
)

// Notification events emitted after a committed write. Clients subscribed on
// their user channel receive the enriched entity under this tag.
const (
	EventBookingCreated   = "booking-created"
	EventBookingAccepted  = "booking-accepted"
	EventBookingRejected  = "booking-rejected"
	EventBookingCancelled = "booking-cancelled"
	EventBookingCompleted = "booking-completed"
	EventBookingReminder  = "booking-reminder"
	EventRatingSubmitted  = "rating-submitted"
)

// DefaultSlotCatalog is the hourly slot set used for tutors that have not
// defined their own.
var DefaultSlotCatalog = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00", "14:00",
	"15:00", "16:00", "17:00", "18:00", "19:00", "20:00",
}

const maxMessageLength = 500

// BookingFilter narrows participant booking listings.
type BookingFilter struct {
	Status   models.BookingStatus
	Upcoming bool
}

// BookingStore is the persistence contract for bookings. Insert must be
// atomic against the no-double-book invariant: a second insert for the same
// (tutor, date, timeSlot) while an active booking holds it fails with a
// conflict, never with a second row.
type BookingStore interface {
	Insert(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindConflicting(ctx context.Context, tutorID uuid.UUID, date time.Time, timeSlot string, statuses []models.BookingStatus) (*models.Booking, error)
	FindByParticipant(ctx context.Context, userID uuid.UUID, role string, filter BookingFilter) ([]models.Booking, error)
	// UpdateStatus applies the transition only when the stored version still
	// matches expectedVersion; a stale writer gets a conflict.
	UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int, status models.BookingStatus, message *string) (*models.Booking, error)
	BookedSlots(ctx context.Context, tutorID uuid.UUID, date time.Time, statuses []models.BookingStatus) ([]string, error)
	FindAcceptedOn(ctx context.Context, date time.Time) ([]models.Booking, error)
	CompletedSessionCounts(ctx context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

// UserDirectory resolves identities. The engine only reads role and subject
// membership; account management lives elsewhere.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListTutors(ctx context.Context, subject string) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// Notifier broadcasts an event to the targets' channels. Best effort: the
// engine never inspects the outcome.
type Notifier interface {
	Emit(event string, payload any, targets ...uuid.UUID)
}

type CreateBookingParams struct {
	TutorID  uuid.UUID
	Subject  string
	Date     time.Time
	TimeSlot string
	Duration int
	Message  *string
	Location string
}

// BookingService is the booking lifecycle engine: it validates creation,
// enforces transition legality and detects scheduling conflicts.
type BookingService struct {
	bookings BookingStore
	users    UserDirectory
	notifier Notifier
}

func NewBookingService(bookings BookingStore, users UserDirectory, notifier Notifier) *BookingService {
	return &BookingService{bookings: bookings, users: users, notifier: notifier}
}

// Create validates a learner's booking request and persists it as pending.
// All checks run before any write; the partial unique index backstops the
// conflict precheck under concurrent creation.
func (s *BookingService) Create(ctx context.Context, learnerID uuid.UUID, params CreateBookingParams) (*models.Booking, error) {
	tutor, err := s.users.GetUser(ctx, params.TutorID)
	if err != nil {
		if errs.IsKind(err, errs.KindNotFound) {
			return nil, errs.NotFound("tutor not found")
		}
		return nil, err
	}
	if tutor.Role != models.RoleTutor {
		return nil, errs.NotFound("tutor not found")
	}
	if learnerID == params.TutorID {
		return nil, errs.Invalid("you cannot book a session with yourself")
	}
	if !tutor.Teaches(params.Subject) {
		return nil, errs.Invalid("tutor does not teach this subject")
	}
	if params.Message != nil && utf8.RuneCountInString(*params.Message) > maxMessageLength {
		return nil, errs.Invalid("message cannot exceed %d characters", maxMessageLength)
	}

	existing, err := s.bookings.FindConflicting(ctx, params.TutorID, params.Date, params.TimeSlot, models.ActiveStatuses)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("this time slot is already booked or pending")
	}

	booking := &models.Booking{
		LearnerID: learnerID,
		TutorID:   params.TutorID,
		Subject:   params.Subject,
		Date:      params.Date,
		TimeSlot:  params.TimeSlot,
		Duration:  params.Duration,
		Message:   params.Message,
		Location:  params.Location,
		Status:    models.StatusPending,
		Version:   1,
	}
	if booking.Duration <= 0 {
		booking.Duration = 60
	}
	if booking.Location == "" {
		booking.Location = "Online"
	}

	if err := s.bookings.Insert(ctx, booking); err != nil {
		return nil, err
	}

	enriched, err := s.bookings.FindByID(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(EventBookingCreated, enriched, enriched.LearnerID, enriched.TutorID)
	return enriched, nil
}

// UpdateStatus moves a booking along the lifecycle graph. Authorization is
// checked before edge legality, so a wrong actor always sees Forbidden even
// when the edge would not exist either. A failed transition never writes.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID, actorID uuid.UUID, next models.BookingStatus, message *string) (*models.Booking, error) {
	if !next.Valid() || next == models.StatusPending {
		return nil, errs.Invalid("invalid target status %q", string(next))
	}
	if message != nil && len(*message) > maxMessageLength {
		return nil, errs.Invalid("message cannot exceed %d characters", maxMessageLength)
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch next {
	case models.StatusAccepted, models.StatusRejected:
		if booking.TutorID != actorID {
			return nil, errs.Forbidden("only the tutor can accept or reject booking requests")
		}
		if booking.Status != models.StatusPending {
			return nil, errs.Invalid("only pending bookings can be %s", string(next))
		}
	case models.StatusCompleted:
		if booking.TutorID != actorID {
			return nil, errs.Forbidden("only the tutor can mark sessions as completed")
		}
		if booking.Status != models.StatusAccepted {
			return nil, errs.Invalid("only accepted bookings can be completed")
		}
	case models.StatusCancelled:
		if !booking.IsParticipant(actorID) {
			return nil, errs.Forbidden("access denied")
		}
		if booking.Status != models.StatusPending && booking.Status != models.StatusAccepted {
			return nil, errs.Invalid("a %s booking cannot be cancelled", string(booking.Status))
		}
	}

	updated, err := s.bookings.UpdateStatus(ctx, bookingID, booking.Version, next, message)
	if err != nil {
		return nil, err
	}

	s.notifier.Emit(statusEvent(next), updated, updated.LearnerID, updated.TutorID)
	return updated, nil
}

// GetByID returns a booking to one of its participants.
func (s *BookingService) GetByID(ctx context.Context, bookingID, actorID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsParticipant(actorID) {
		return nil, errs.Forbidden("access denied")
	}
	return booking, nil
}

// List returns the caller's bookings, learner-side or tutor-side depending
// on role, ordered by date then slot.
func (s *BookingService) List(ctx context.Context, userID uuid.UUID, role string, filter BookingFilter) ([]models.Booking, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errs.Invalid("invalid status filter %q", string(filter.Status))
	}
	return s.bookings.FindByParticipant(ctx, userID, role, filter)
}

type Availability struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
	BookedSlots    []string `json:"bookedSlots"`
}

// Availability subtracts the tutor's actively held slots on date from their
// slot catalog. Derived only, nothing is written.
func (s *BookingService) Availability(ctx context.Context, tutorID uuid.UUID, date time.Time) (*Availability, error) {
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

	booked, err := s.bookings.BookedSlots(ctx, tutorID, date, models.ActiveStatuses)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}

	catalog := DefaultSlotCatalog
	if len(tutor.SlotCatalog) > 0 {
		catalog = tutor.SlotCatalog
	}
	available := make([]string, 0, len(catalog))
	for _, slot := range catalog {
		if !taken[slot] {
			available = append(available, slot)
		}
	}

	return &Availability{
		Date:           date.Format("2006-01-02"),
		AvailableSlots: available,
		BookedSlots:    booked,
	}, nil
}

func statusEvent(status models.BookingStatus) string {
	switch status {
	case models.StatusAccepted:
		return EventBookingAccepted
	case models.StatusRejected:
		return EventBookingRejected
	case models.StatusCancelled:
		return EventBookingCancelled
	case models.StatusCompleted:
		return EventBookingCompleted
	}
	return "booking-updated"
}
