package jobs

import (
	"context"
	"log"
	"time"

	"github.com/studybridge/peer_tutor/services"
)

// ReminderJob nudges both participants of an accepted session shortly before
// it starts. Slot labels that are not clock times (tutor-defined catalogs)
// are skipped.
type ReminderJob struct {
	bookings services.BookingStore
	notifier services.Notifier
}

func NewReminderJob(bookings services.BookingStore, notifier services.Notifier) *ReminderJob {
	return &ReminderJob{bookings: bookings, notifier: notifier}
}

func (j *ReminderJob) Run() {
	log.Println("Running job: SendSessionReminders...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	bookings, err := j.bookings.FindAcceptedOn(ctx, today)
	if err != nil {
		log.Printf("Error checking for upcoming sessions: %v", err)
		return
	}

	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	for i := range bookings {
		booking := &bookings[i]
		slot, err := time.Parse("15:04", booking.TimeSlot)
		if err != nil {
			continue
		}
		start := time.Date(y, m, d, slot.Hour(), slot.Minute(), 0, 0, time.UTC)
		if start.Before(lowerBound) || start.After(upperBound) {
			continue
		}

		log.Printf("Sending reminder for booking ID: %s", booking.ID)
		j.notifier.Emit(services.EventBookingReminder, booking, booking.LearnerID, booking.TutorID)
	}
}
