package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/errs"
	"github.com/studybridge/peer_tutor/models"
)

type tutorFixture struct {
	directory *fakeUserDirectory
	bookings  *fakeBookingStore
	ratings   *fakeRatingStore
	svc       *TutorService
}

func newTutorFixture(users ...*models.User) *tutorFixture {
	directory := newFakeUsers(users...)
	bookings := newFakeBookings(directory)
	ratings := newFakeRatings(directory)
	return &tutorFixture{
		directory: directory,
		bookings:  bookings,
		ratings:   ratings,
		svc:       NewTutorService(directory, bookings, ratings),
	}
}

// seedCompleted plants a completed booking directly, optionally rated.
func (f *tutorFixture) seedCompleted(t *testing.T, learner, tutor *models.User, slot string, rating int) {
	t.Helper()
	ctx := context.Background()
	booking := &models.Booking{
		LearnerID: learner.ID,
		TutorID:   tutor.ID,
		Subject:   "mathematics",
		Date:      dateOn(2024, time.May, 10),
		TimeSlot:  slot,
		Duration:  60,
		Location:  "Online",
		Status:    models.StatusPending,
		Version:   1,
	}
	if err := f.bookings.Insert(ctx, booking); err != nil {
		t.Fatalf("seed insert: %v", err)
	}
	if _, err := f.bookings.UpdateStatus(ctx, booking.ID, 1, models.StatusCompleted, nil); err != nil {
		t.Fatalf("seed complete: %v", err)
	}
	if rating > 0 {
		err := f.ratings.Insert(ctx, &models.Rating{
			BookingID: booking.ID,
			RaterID:   learner.ID,
			TutorID:   tutor.ID,
			Subject:   booking.Subject,
			Rating:    rating,
		})
		if err != nil {
			t.Fatalf("seed rating: %v", err)
		}
	}
}

func TestListTutorsEnrichment(t *testing.T) {
	learner := newLearner("alice", "nguyen")
	mathTutor := newTutor("bob", "tran", "mathematics")
	physTutor := newTutor("carol", "park", "physics")
	f := newTutorFixture(learner, mathTutor, physTutor)

	f.seedCompleted(t, learner, mathTutor, "09:00", 5)
	f.seedCompleted(t, learner, mathTutor, "10:00", 4)
	f.seedCompleted(t, learner, mathTutor, "11:00", 0)

	tutors, err := f.svc.ListTutors(context.Background(), "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tutors) != 2 {
		t.Fatalf("expected 2 tutors, got %d", len(tutors))
	}

	var math *TutorSummary
	for i := range tutors {
		if tutors[i].Tutor.ID == mathTutor.ID {
			math = &tutors[i]
		}
	}
	if math == nil {
		t.Fatalf("math tutor missing from listing")
	}
	if math.TotalSessions != 3 {
		t.Errorf("expected 3 completed sessions, got %d", math.TotalSessions)
	}
	if math.ReviewCount != 2 {
		t.Errorf("expected 2 reviews, got %d", math.ReviewCount)
	}
	// mean(5,4) = 4.5: unrated sessions do not drag the average.
	if math.AverageRating != 4.5 {
		t.Errorf("expected average 4.5, got %v", math.AverageRating)
	}
}

func TestListTutorsSubjectFilter(t *testing.T) {
	mathTutor := newTutor("bob", "tran", "mathematics")
	physTutor := newTutor("carol", "park", "physics")
	f := newTutorFixture(mathTutor, physTutor)

	tutors, err := f.svc.ListTutors(context.Background(), "physics", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tutors) != 1 || tutors[0].Tutor.ID != physTutor.ID {
		t.Fatalf("expected only the physics tutor")
	}
}

func TestListTutorsDeterministicOrdering(t *testing.T) {
	learner := newLearner("alice", "nguyen")
	first := newTutor("bob", "tran", "mathematics")
	second := newTutor("carol", "park", "mathematics")
	third := newTutor("dave", "kim", "mathematics")
	f := newTutorFixture(learner, first, second, third)

	// first and second end up with the identical average; only the id breaks
	// the tie.
	f.seedCompleted(t, learner, first, "09:00", 4)
	f.seedCompleted(t, learner, second, "10:00", 4)
	f.seedCompleted(t, learner, third, "11:00", 5)

	ordered, err := f.svc.ListTutors(context.Background(), "", SortByRating)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if ordered[0].Tutor.ID != third.ID {
		t.Fatalf("expected highest rated tutor first")
	}

	tieWinner := first.ID
	if second.ID.String() < first.ID.String() {
		tieWinner = second.ID
	}
	if ordered[1].Tutor.ID != tieWinner {
		t.Errorf("expected id tiebreak to pick %s", tieWinner)
	}

	// Repeated calls with unchanged data return the identical ordering.
	again, err := f.svc.ListTutors(context.Background(), "", SortByRating)
	if err != nil {
		t.Fatalf("relist: %v", err)
	}
	for i := range ordered {
		if ordered[i].Tutor.ID != again[i].Tutor.ID {
			t.Fatalf("ordering not stable at position %d", i)
		}
	}

	if _, err := f.svc.ListTutors(context.Background(), "", "height"); !errs.IsKind(err, errs.KindInvalid) {
		t.Fatalf("expected invalid sort key, got %v", err)
	}
}

func TestListTutorsSortBySessions(t *testing.T) {
	learner := newLearner("alice", "nguyen")
	busy := newTutor("bob", "tran", "mathematics")
	quiet := newTutor("carol", "park", "mathematics")
	f := newTutorFixture(learner, busy, quiet)

	f.seedCompleted(t, learner, busy, "09:00", 3)
	f.seedCompleted(t, learner, busy, "10:00", 3)
	f.seedCompleted(t, learner, quiet, "11:00", 5)

	ordered, err := f.svc.ListTutors(context.Background(), "", SortBySessions)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if ordered[0].Tutor.ID != busy.ID {
		t.Fatalf("expected tutor with more sessions first")
	}
}

func TestGetTutor(t *testing.T) {
	learner := newLearner("alice", "nguyen")
	tutor := newTutor("bob", "tran", "mathematics")
	f := newTutorFixture(learner, tutor)
	f.seedCompleted(t, learner, tutor, "09:00", 5)

	got, err := f.svc.GetTutor(context.Background(), tutor.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalSessions != 1 || got.ReviewCount != 1 || got.AverageRating != 5.0 {
		t.Errorf("unexpected enrichment: %+v", got)
	}

	if _, err := f.svc.GetTutor(context.Background(), learner.ID); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("expected not found for learner id, got %v", err)
	}
	if _, err := f.svc.GetTutor(context.Background(), uuid.New()); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}
}

func TestUpdateTutorProfile(t *testing.T) {
	tutor := newTutor("bob", "tran", "mathematics")
	learner := newLearner("alice", "nguyen")
	f := newTutorFixture(tutor, learner)
	ctx := context.Background()

	updated, err := f.svc.UpdateProfile(ctx, tutor.ID, UpdateTutorProfileParams{
		Subjects:    []string{"mathematics", "statistics"},
		SlotCatalog: []string{"18:00", "19:00"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Subjects) != 2 || len(updated.SlotCatalog) != 2 {
		t.Fatalf("profile not updated: %+v", updated)
	}

	reloaded, err := f.directory.GetUser(ctx, tutor.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Teaches("statistics") {
		t.Errorf("expected persisted subject update")
	}

	if _, err := f.svc.UpdateProfile(ctx, learner.ID, UpdateTutorProfileParams{Subjects: []string{"art"}}); !errs.IsKind(err, errs.KindNotFound) {
		t.Errorf("expected not found for learner profile update, got %v", err)
	}
}
