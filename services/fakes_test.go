package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/errs"
	"github.com/studybridge/peer_tutor/models"
)

// In-memory store fakes. They mirror the real stores' consistency contract:
// insert is atomic against the uniqueness invariants and status updates are
// versioned, so race-loser behavior is exercisable without Postgres.

type fakeUserDirectory struct {
	mu    sync.Mutex
	users []*models.User
}

func newFakeUsers(users ...*models.User) *fakeUserDirectory {
	return &fakeUserDirectory{users: users}
}

func (f *fakeUserDirectory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errs.NotFound("user not found")
}

func (f *fakeUserDirectory) ListTutors(_ context.Context, subject string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tutors []models.User
	for _, u := range f.users {
		if u.Role != models.RoleTutor {
			continue
		}
		if subject != "" && !u.Teaches(subject) {
			continue
		}
		tutors = append(tutors, *u)
	}
	return tutors, nil
}

func (f *fakeUserDirectory) Save(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == user.ID {
			copied := *user
			f.users[i] = &copied
			return nil
		}
	}
	copied := *user
	f.users = append(f.users, &copied)
	return nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*models.Booking
	users    *fakeUserDirectory
}

func newFakeBookings(users *fakeUserDirectory) *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uuid.UUID]*models.Booking), users: users}
}

func isActive(status models.BookingStatus) bool {
	return status == models.StatusPending || status == models.StatusAccepted
}

func (f *fakeBookingStore) Insert(_ context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.TutorID == booking.TutorID && b.Date.Equal(booking.Date) && b.TimeSlot == booking.TimeSlot && isActive(b.Status) {
			return errs.Conflict("this time slot is already booked or pending")
		}
	}
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingStore) enrich(b models.Booking) models.Booking {
	if f.users == nil {
		return b
	}
	if learner, err := f.users.GetUser(context.Background(), b.LearnerID); err == nil {
		b.Learner = *learner
	}
	if tutor, err := f.users.GetUser(context.Background(), b.TutorID); err == nil {
		b.Tutor = *tutor
	}
	return b
}

func (f *fakeBookingStore) FindByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, errs.NotFound("booking not found")
	}
	copied := f.enrich(*b)
	return &copied, nil
}

func (f *fakeBookingStore) FindConflicting(_ context.Context, tutorID uuid.UUID, date time.Time, timeSlot string, statuses []models.BookingStatus) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.TutorID != tutorID || !b.Date.Equal(date) || b.TimeSlot != timeSlot {
			continue
		}
		for _, status := range statuses {
			if b.Status == status {
				copied := *b
				return &copied, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeBookingStore) FindByParticipant(_ context.Context, userID uuid.UUID, role string, filter BookingFilter) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if role == models.RoleLearner && b.LearnerID != userID {
			continue
		}
		if role != models.RoleLearner && b.TutorID != userID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Upcoming && (!isActive(b.Status) || b.Date.Before(testToday())) {
			continue
		}
		out = append(out, f.enrich(*b))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

func (f *fakeBookingStore) UpdateStatus(_ context.Context, id uuid.UUID, expectedVersion int, status models.BookingStatus, message *string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, errs.NotFound("booking not found")
	}
	if b.Version != expectedVersion {
		return nil, errs.Conflict("booking was modified concurrently, please retry")
	}
	b.Status = status
	b.Version++
	if message != nil {
		b.Message = message
	}
	copied := f.enrich(*b)
	return &copied, nil
}

func (f *fakeBookingStore) BookedSlots(_ context.Context, tutorID uuid.UUID, date time.Time, statuses []models.BookingStatus) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var slots []string
	for _, b := range f.bookings {
		if b.TutorID != tutorID || !b.Date.Equal(date) {
			continue
		}
		for _, status := range statuses {
			if b.Status == status {
				slots = append(slots, b.TimeSlot)
				break
			}
		}
	}
	sort.Strings(slots)
	return slots, nil
}

func (f *fakeBookingStore) FindAcceptedOn(_ context.Context, date time.Time) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.Status == models.StatusAccepted && b.Date.Equal(date) {
			out = append(out, f.enrich(*b))
		}
	}
	return out, nil
}

func (f *fakeBookingStore) CompletedSessionCounts(_ context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[uuid.UUID]int64, len(tutorIDs))
	for _, id := range tutorIDs {
		for _, b := range f.bookings {
			if b.TutorID == id && b.Status == models.StatusCompleted {
				counts[id]++
			}
		}
	}
	return counts, nil
}

// activeCount is the test oracle for the no-double-book property.
func (f *fakeBookingStore) activeCount(tutorID uuid.UUID, date time.Time, timeSlot string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, b := range f.bookings {
		if b.TutorID == tutorID && b.Date.Equal(date) && b.TimeSlot == timeSlot && isActive(b.Status) {
			count++
		}
	}
	return count
}

type fakeRatingStore struct {
	mu      sync.Mutex
	ratings map[uuid.UUID]*models.Rating
	users   *fakeUserDirectory
}

func newFakeRatings(users *fakeUserDirectory) *fakeRatingStore {
	return &fakeRatingStore{ratings: make(map[uuid.UUID]*models.Rating), users: users}
}

func (f *fakeRatingStore) Insert(_ context.Context, rating *models.Rating) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.ratings {
		if r.BookingID == rating.BookingID && r.RaterID == rating.RaterID {
			return errs.Conflict("you have already rated this session")
		}
	}
	rating.ID = uuid.New()
	rating.CreatedAt = time.Now()
	copied := *rating
	f.ratings[rating.ID] = &copied
	return nil
}

func (f *fakeRatingStore) enrich(r models.Rating) models.Rating {
	if f.users == nil {
		return r
	}
	if rater, err := f.users.GetUser(context.Background(), r.RaterID); err == nil {
		r.Rater = *rater
	}
	if tutor, err := f.users.GetUser(context.Background(), r.TutorID); err == nil {
		r.Tutor = *tutor
	}
	return r
}

func (f *fakeRatingStore) FindByID(_ context.Context, id uuid.UUID) (*models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.ratings[id]
	if !ok {
		return nil, errs.NotFound("rating not found")
	}
	copied := f.enrich(*r)
	return &copied, nil
}

func (f *fakeRatingStore) FindByTutor(_ context.Context, tutorID uuid.UUID) ([]models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Rating
	for _, r := range f.ratings {
		if r.TutorID == tutorID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRatingStore) FindByBookingAndRater(_ context.Context, bookingID, raterID uuid.UUID) (*models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.ratings {
		if r.BookingID == bookingID && r.RaterID == raterID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRatingStore) List(_ context.Context, tutorID *uuid.UUID, limit int) ([]models.Rating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Rating
	for _, r := range f.ratings {
		if tutorID != nil && r.TutorID != *tutorID {
			continue
		}
		out = append(out, f.enrich(*r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRatingStore) SummariesByTutor(_ context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]TutorRatingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	summaries := make(map[uuid.UUID]TutorRatingSummary, len(tutorIDs))
	for _, id := range tutorIDs {
		var count int64
		sum := 0
		for _, r := range f.ratings {
			if r.TutorID == id {
				count++
				sum += r.Rating
			}
		}
		if count > 0 {
			summaries[id] = TutorRatingSummary{Count: count, Average: float64(sum) / float64(count)}
		}
	}
	return summaries, nil
}

type emitted struct {
	event   string
	targets []uuid.UUID
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []emitted
}

func (f *fakeNotifier) Emit(event string, _ any, targets ...uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{event: event, targets: targets})
}

func (f *fakeNotifier) eventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.events))
	for i, e := range f.events {
		names[i] = e.event
	}
	return names
}

// Shared fixture helpers.

func newLearner(first, last string) *models.User {
	return &models.User{
		ID:         uuid.New(),
		FirstName:  first,
		LastName:   last,
		Email:      first + "@example.edu",
		University: "Deakin University",
		Year:       "2",
		Role:       models.RoleLearner,
	}
}

func newTutor(first, last string, subjects ...string) *models.User {
	tutor := newLearner(first, last)
	tutor.Role = models.RoleTutor
	tutor.Subjects = subjects
	return tutor
}

func dateOn(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

// testToday mirrors the store's upcoming cutoff: UTC midnight of today.
func testToday() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
