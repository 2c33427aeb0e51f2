package notifications

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/models"
	"github.com/studybridge/peer_tutor/websocket"
)

var bookingEmailSubjects = map[string]string{
	"booking-created":   "New Booking Request",
	"booking-accepted":  "Your Booking Was Accepted",
	"booking-rejected":  "Your Booking Was Declined",
	"booking-cancelled": "A Booking Was Cancelled",
	"booking-completed": "Session Completed",
	"booking-reminder":  "Reminder: Your Session Starts Soon",
}

// Dispatcher implements the engine's Notifier contract. Delivery is fire and
// forget: the triggering write has already committed, so failures here are
// logged by the channels themselves and never surfaced to the caller.
type Dispatcher struct {
	hub   *websocket.Hub
	email *BrevoService
}

func NewDispatcher(hub *websocket.Hub, email *BrevoService) *Dispatcher {
	return &Dispatcher{hub: hub, email: email}
}

func (d *Dispatcher) Emit(event string, payload any, targets ...uuid.UUID) {
	d.hub.Emit(event, payload, targets...)

	if d.email == nil {
		return
	}
	booking, ok := payload.(*models.Booking)
	if !ok {
		return
	}
	subject, ok := bookingEmailSubjects[event]
	if !ok {
		return
	}

	body := fmt.Sprintf(
		"<h1>%s</h1><p>%s session on %s at %s (%s).</p>",
		subject, booking.Subject, booking.Date.Format("2006-01-02"), booking.TimeSlot, booking.Location,
	)
	for _, target := range targets {
		var recipient *models.User
		switch target {
		case booking.LearnerID:
			recipient = &booking.Learner
		case booking.TutorID:
			recipient = &booking.Tutor
		default:
			continue
		}
		if recipient.Email == "" {
			continue
		}
		go d.email.Send(recipient.FullName(), recipient.Email, subject, body)
	}
}
