package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusAccepted  BookingStatus = "accepted"
	StatusRejected  BookingStatus = "rejected"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s BookingStatus) Terminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ActiveStatuses are the statuses that hold a tutor's slot. The partial
// unique index below only covers rows in one of these statuses, which is
// what makes the no-double-book invariant hold under concurrent inserts.
var ActiveStatuses = []BookingStatus{StatusPending, StatusAccepted}

type Booking struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LearnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"learner_id"`
	TutorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_active_slot" json:"tutor_id"`

	Subject  string        `gorm:"size:100;not null" json:"subject"`
	Date     time.Time     `gorm:"type:date;not null;uniqueIndex:uniq_active_slot" json:"date"`
	TimeSlot string        `gorm:"size:20;not null;uniqueIndex:uniq_active_slot,where:status = 'pending' OR status = 'accepted'" json:"time_slot"`
	Duration int           `gorm:"not null;default:60" json:"duration"`
	Status   BookingStatus `gorm:"size:20;not null;default:'pending'" json:"status"`

	Message  *string `gorm:"size:500" json:"message,omitempty"`
	Location string  `gorm:"size:255;not null;default:'Online'" json:"location"`

	// Version guards status transitions. Concurrent writers against the
	// same booking race on it; the loser observes zero rows updated.
	Version int `gorm:"not null;default:1" json:"-"`

	Learner User `gorm:"foreignkey:LearnerID" json:"learner,omitempty"`
	Tutor   User `gorm:"foreignkey:TutorID" json:"tutor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) IsParticipant(userID uuid.UUID) bool {
	return b.LearnerID == userID || b.TutorID == userID
}
