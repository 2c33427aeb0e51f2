package stores

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/studybridge/peer_tutor/errs"
	"github.com/studybridge/peer_tutor/models"
	"github.com/studybridge/peer_tutor/services"
	"gorm.io/gorm"
)

type RatingStore struct {
	db *gorm.DB
}

func NewRatingStore(db *gorm.DB) *RatingStore {
	return &RatingStore{db: db}
}

var _ services.RatingStore = (*RatingStore)(nil)

// Insert relies on the unique index over (booking_id, rater_id); a
// concurrent duplicate submission loses at the constraint and surfaces as a
// conflict.
func (s *RatingStore) Insert(ctx context.Context, rating *models.Rating) error {
	err := s.db.WithContext(ctx).Create(rating).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict("you have already rated this session")
	}
	return wrap(err, "rating insert")
}

func (s *RatingStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := s.db.WithContext(ctx).
		Preload("Rater").
		Preload("Tutor").
		First(&rating, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("rating not found")
	}
	if err != nil {
		return nil, wrap(err, "rating lookup")
	}
	return &rating, nil
}

func (s *RatingStore) FindByTutor(ctx context.Context, tutorID uuid.UUID) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.WithContext(ctx).
		Where("tutor_id = ?", tutorID).
		Find(&ratings).Error
	if err != nil {
		return nil, wrap(err, "ratings by tutor")
	}
	return ratings, nil
}

func (s *RatingStore) FindByBookingAndRater(ctx context.Context, bookingID, raterID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := s.db.WithContext(ctx).
		Where("booking_id = ? AND rater_id = ?", bookingID, raterID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap(err, "rating duplicate check")
	}
	return &rating, nil
}

func (s *RatingStore) List(ctx context.Context, tutorID *uuid.UUID, limit int) ([]models.Rating, error) {
	query := s.db.WithContext(ctx).
		Preload("Rater").
		Preload("Tutor")
	if tutorID != nil {
		query = query.Where("tutor_id = ?", *tutorID)
	}

	var ratings []models.Rating
	if err := query.Order("created_at desc").Limit(limit).Find(&ratings).Error; err != nil {
		return nil, wrap(err, "rating listing")
	}
	return ratings, nil
}

func (s *RatingStore) SummariesByTutor(ctx context.Context, tutorIDs []uuid.UUID) (map[uuid.UUID]services.TutorRatingSummary, error) {
	summaries := make(map[uuid.UUID]services.TutorRatingSummary, len(tutorIDs))
	if len(tutorIDs) == 0 {
		return summaries, nil
	}

	var rows []struct {
		TutorID uuid.UUID
		Total   int64
		Average float64
	}
	err := s.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("tutor_id, count(*) as total, avg(rating) as average").
		Where("tutor_id IN ?", tutorIDs).
		Group("tutor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap(err, "rating summaries")
	}
	for _, row := range rows {
		summaries[row.TutorID] = services.TutorRatingSummary{Count: row.Total, Average: row.Average}
	}
	return summaries, nil
}
