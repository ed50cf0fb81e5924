package repositories

import (
	"time"

	"chatRelay/internal/errs"
	"chatRelay/internal/models"
	"chatRelay/internal/utils"

	"gorm.io/gorm"
)

type AuthenticationRepository struct {
	db *gorm.DB
}

func NewAuthenticationRepository(db *gorm.DB) *AuthenticationRepository {
	return &AuthenticationRepository{
		db: db,
	}
}

func (ar *AuthenticationRepository) CreateUser(user *models.User) (*models.User, []error) {
	var errors []error
	result := ar.db.Create(user)
	if result.Error != nil {
		errors = append(errors, result.Error)
		return nil, errors
	}
	if result.RowsAffected == 0 {
		errors = append(errors, errs.ErrUserNotFound)
		return nil, errors
	}
	return user, nil
}

func (ar *AuthenticationRepository) CheckIfUserExists(email string) *models.User {
	var user models.User
	result := ar.db.Where("email = ?", email).First(&user)
	if result.Error == nil && result.RowsAffected > 0 {
		return &user
	}
	return nil
}

func (ar *AuthenticationRepository) Login(login *models.LoginRequestBody) (*models.User, []error) {
	var errors []error
	user := ar.CheckIfUserExists(login.Email)
	if user == nil {
		errors = append(errors, errs.ErrUserNotFound)
		return nil, errors
	}
	if err := utils.CompareHashAndPassword(user.PasswordHash, login.Password); err != nil {
		errors = append(errors, errs.ErrWrongPassword)
		return nil, errors
	}
	return user, nil
}

func (ar *AuthenticationRepository) GetUserById(userID uint) (*models.User, error) {
	var user models.User
	if err := ar.db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (ar *AuthenticationRepository) SetUserOnlineStatus(userID uint, online bool) error {
	now := time.Now()
	return ar.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_online": online,
			"last_seen": &now,
		}).Error
}

func (ar *AuthenticationRepository) GetUsersWithPagination(page, size int) ([]models.User, int64, error) {
	var users []models.User
	var total int64
	if err := ar.db.
		Scopes(utils.Paginate(page, size)).
		Order("first_name ASC").
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	if err := ar.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
