package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ujjwal-07/RAG-CHAT/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

// FindTaken reports which of username/email is already registered, in one
// query. Empty strings mean both are free.
func (r *UserRepository) FindTaken(username, email string) (usernameTaken, emailTaken bool, err error) {
	var existing []model.User
	if err := r.db.Where("username = ? OR email = ?", username, email).Find(&existing).Error; err != nil {
		return false, false, fmt.Errorf("check user uniqueness failed: %w", err)
	}
	for _, u := range existing {
		if u.Username == username {
			usernameTaken = true
		}
		if u.Email == email {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}
