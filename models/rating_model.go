package models

import (
	"time"

	"github.com/google/uuid"
)

type Rating struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_booking_rater" json:"booking_id"`
	RaterID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_booking_rater" json:"rater_id"`

	// TutorID and Subject are copied from the booking at write time so that
	// historical ratings survive later edits to the booking.
	TutorID uuid.UUID `gorm:"type:uuid;not null;index" json:"tutor_id"`
	Subject string    `gorm:"size:100;not null" json:"subject"`

	Rating int    `gorm:"not null" json:"rating"`
	Review string `gorm:"size:500" json:"review,omitempty"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"-"`
	Rater   User    `gorm:"foreignkey:RaterID" json:"rater,omitempty"`
	Tutor   User    `gorm:"foreignkey:TutorID" json:"tutor,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
