package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	RoleLearner = "learner"
	RoleTutor   = "tutor"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	FirstName string    `gorm:"size:30;not null" json:"first_name"`
	LastName  string    `gorm:"size:30;not null" json:"last_name"`
	Email     string    `gorm:"size:255;not null;unique" json:"email"`
	Password  string    `gorm:"not null" json:"-"`

	University string `gorm:"size:100;not null" json:"university"`
	Year       string `gorm:"size:20;not null" json:"year"`
	Role       string `gorm:"size:20;not null;default:'learner'" json:"role"`

	// Subjects the user teaches. Empty for learners.
	Subjects pq.StringArray `gorm:"type:text[]" json:"subjects"`

	// SlotCatalog overrides the default hourly slot set when a tutor
	// defines their own bookable times.
	SlotCatalog pq.StringArray `gorm:"type:text[]" json:"slot_catalog,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) Teaches(subject string) bool {
	for _, s := range u.Subjects {
		if s == subject {
			return true
		}
	}
	return false
}
