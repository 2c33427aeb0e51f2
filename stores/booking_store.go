package stores

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/errs"
	"github.com/studybridge/peer_tutor/models"
	"github.com/studybridge/peer_tutor/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingStore struct {
	db *gorm.DB
}

func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

var _ services.BookingStore = (*BookingStore)(nil)

// Insert persists a new booking. The conflict recheck and the insert run in
// one transaction with the competing rows locked; the partial unique index
// on (tutor_id, date, time_slot) catches whatever still races past it.
func (s *BookingStore) Insert(ctx context.Context, booking *models.Booking) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("tutor_id = ? AND date = ? AND time_slot = ? AND status IN ?",
				booking.TutorID, booking.Date, booking.TimeSlot, models.ActiveStatuses).
			First(&existing).Error
		if err == nil {
			return errs.Conflict("this time slot is already booked or pending")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(booking).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict("this time slot is already booked or pending")
	}
	return wrap(err, "booking insert")
}

func (s *BookingStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Preload("Learner").
		Preload("Tutor").
		First(&booking, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("booking not found")
	}
	if err != nil {
		return nil, wrap(err, "booking lookup")
	}
	return &booking, nil
}

func (s *BookingStore) FindConflicting(ctx context.Context, tutorID uuid.UUID, date time.Time, timeSlot string, statuses []models.BookingStatus) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).
		Where("tutor_id = ? AND date = ? AND time_slot = ? AND status IN ?", tutorID, date, timeSlot, statuses).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "booking conflict query")
	}
	return &booking, nil
}

func (s *BookingStore) FindByParticipant(ctx context.Context, userID uuid.UUID, role string, filter services.BookingFilter) ([]models.Booking, error) {
	column := "tutor_id"
	if role == models.RoleLearner {
		column = "learner_id"
	}

	query := s.db.WithContext(ctx).
		Preload("Learner").
		Preload("Tutor").
		Where(column+" = ?", userID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Upcoming {
		query = query.Where("date >= ? AND status IN ?", today(), models.ActiveStatuses)
	}

	var bookings []models.Booking
	if err := query.Order("date asc, time_slot asc").Find(&bookings).Error; err != nil {
		return nil, wrap(err, "booking listing")
	}
	return bookings, nil
}

// UpdateStatus performs the optimistic compare-and-swap on version. Zero
// rows updated means either the booking is gone or another transition got
// there first; the two are told apart with a follow-up lookup.
func (s *BookingStore) UpdateStatus(ctx context.Context, id uuid.UUID, expectedVersion int, status models.BookingStatus, message *string) (*models.Booking, error) {
	updates := map[string]any{
		"status":  status,
		"version": gorm.Expr("version + 1"),
	}
	if message != nil {
		updates["message"] = *message
	}

	res := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(updates)
	if res.Error != nil {
		return nil, wrap(res.Error, "booking status update")
	}
	if res.RowsAffected == 0 {
		if _, err := s.FindByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, errs.Conflict("booking was modified concurrently, please retry")
	}

	return s.FindByID(ctx, id)
}

func (s *BookingStore) BookedSlots(ctx context.Context, tutorID uuid.UUID, date time.Time, statuses []models.BookingStatus) ([]string, error) {
	var slots []string
	err := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("tutor_id = ? AND date = ? AND status IN ?", tutorID, date, statuses).
		Order("time_slot asc").
		Pluck("time_slot", &slots).Error
	if err != nil {
		return nil, wrap(err, "booked slots query")
	}
	return slots, nil
}

func (s *BookingStore) FindAcceptedOn(ctx context.Context, date time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Preload("Learner").
		Preload("Tutor").
		Where("date = ? AND status = ?", date, models.StatusAccepted).
		Find(&bookings).Error
	if err != nil {
		return nil, wrap(err, "accepted bookings query")
	}
	return bookings, nil
}

func (s *BookingStore) CompletedSessionCounts(ctx context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(tutorIDs))
	if len(tutorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TutorID uuid.UUID
		Total   int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("tutor_id, count(*) as total").
		Where("tutor_id IN ? AND status = ?", tutorIDs, models.StatusCompleted).
		Group("tutor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err, "completed session counts")
	}
	for _, row := range rows {
		counts[row.TutorID] = row.Total
	}
	return counts, nil
}

func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
