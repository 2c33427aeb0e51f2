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

// UserStore doubles as the identity directory for the engine and the account
// backend for the auth handlers.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

var _ services.UserDirectory = (*UserStore)(nil)

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, wrap(err, "user lookup")
	}
	return &user, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NotFound("user not found")
	}
	if err != nil {
		return nil, wrap(err, "user lookup")
	}
	return &user, nil
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.Conflict("email already exists")
	}
	return wrap(err, "user create")
}

func (s *UserStore) ListTutors(ctx context.Context, subject string) ([]models.User, error) {
	query := s.db.WithContext(ctx).Where("role = ?", models.RoleTutor)
	if subject != "" {
		query = query.Where("? = ANY(subjects)", subject)
	}

	var tutors []models.User
	if err := query.Order("created_at asc").Find(&tutors).Error; err != nil {
		return nil, wrap(err, "tutor listing")
	}
	return tutors, nil
}

func (s *UserStore) Save(ctx context.Context, user *models.User) error {
	return wrap(s.db.WithContext(ctx).Save(user).Error, "user save")
}
