package services

import (
	"context"
	"fmt"
	"time"

	"chatRelay/configs"
	"chatRelay/internal/errs"
	"chatRelay/internal/models"
	"chatRelay/internal/repositories"
	"chatRelay/internal/utils"
	"chatRelay/internal/validators"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const statusCacheExpiration = 24 * time.Hour

type AuthenticationService struct {
	authRepo *repositories.AuthenticationRepository
	config   *configs.Config
	rdb      *redis.Client
	jwtKey   []byte
	log      zerolog.Logger
}

func NewAuthenticationService(
	authRepo *repositories.AuthenticationRepository,
	config *configs.Config,
	rdb *redis.Client,
	log zerolog.Logger,
) *AuthenticationService {
	secret := config.Viper.GetString("jwt.secret_key")
	if secret == "" {
		secret = utils.GenerateSecretKey()
		log.Warn().Msg("no jwt secret configured, generated an ephemeral one")
	}
	return &AuthenticationService{
		authRepo: authRepo,
		config:   config,
		rdb:      rdb,
		jwtKey:   []byte(secret),
		log:      log.With().Str("component", "auth").Logger(),
	}
}

func (as *AuthenticationService) JwtKey() []byte {
	return as.jwtKey
}

func (as *AuthenticationService) Register(user *models.User) (*models.User, []error) {
	var errors []error
	if as.authRepo.CheckIfUserExists(user.Email) != nil {
		errors = append(errors, errs.ErrUserAlreadyExists)
		return nil, errors
	}
	if validationErrs := validators.ValidateUser(user); len(validationErrs) > 0 {
		errors = append(errors, validationErrs...)
		return nil, errors
	}
	password, err := utils.HashPassword(user.Password)
	if err != nil {
		errors = append(errors, err)
		return nil, errors
	}
	user.PasswordHash = password
	return as.authRepo.CreateUser(user)
}

func (as *AuthenticationService) Login(loginData *models.LoginRequestBody) (*models.LoginResponse, []error) {
	var errors []error

	user, loginErrs := as.authRepo.Login(loginData)
	if len(loginErrs) > 0 {
		errors = append(errors, loginErrs...)
		return nil, errors
	}

	expiration := time.Now().Add(time.Duration(as.config.Viper.GetInt("jwt.expiration_time")) * time.Second)
	token, jwtErr := utils.CreateJwtToken(
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		as.jwtKey,
		expiration,
	)
	if jwtErr != nil {
		errors = append(errors, jwtErr)
		return nil, errors
	}

	return &models.LoginResponse{
		User:  *user,
		Token: token,
	}, nil
}

func (as *AuthenticationService) VerifyToken(token string) (*models.Claims, error) {
	return utils.VerifyToken(token, as.jwtKey)
}

func (as *AuthenticationService) GetUserById(userID uint) (*models.User, error) {
	return as.authRepo.GetUserById(userID)
}

// SetUserOnlineStatus persists the online flag and mirrors it into the redis
// cache when one is configured. Implements realtime.StatusRecorder.
func (as *AuthenticationService) SetUserOnlineStatus(userID uint, online bool) error {
	if err := as.authRepo.SetUserOnlineStatus(userID, online); err != nil {
		return err
	}
	if as.rdb == nil {
		return nil
	}

	ctx := context.Background()
	statusKey := fmt.Sprintf("user_online_status_%v", userID)
	statusValue := "false"
	if online {
		statusValue = "true"
	}
	if err := as.rdb.Set(ctx, statusKey, statusValue, statusCacheExpiration).Err(); err != nil {
		as.log.Warn().Err(err).Uint("user_id", userID).Msg("failed to cache online status")
	}
	lastSeenKey := fmt.Sprintf("user_last_seen_%v", userID)
	if err := as.rdb.Set(ctx, lastSeenKey, time.Now().Format(time.RFC3339), statusCacheExpiration).Err(); err != nil {
		as.log.Warn().Err(err).Uint("user_id", userID).Msg("failed to cache last seen")
	}
	return nil
}

func (as *AuthenticationService) GetAllUsersWithPagination(page, size int) (*models.GetUsersResponse, []error) {
	var errors []error
	if page < 0 || size < 0 {
		errors = append(errors, errs.ErrInvalidPageOrSize)
		return nil, errors
	}
	users, total, err := as.authRepo.GetUsersWithPagination(page, size)
	if err != nil {
		errors = append(errors, err)
		return nil, errors
	}
	responses := []models.UserResponse{}
	for _, user := range users {
		responses = append(responses, *user.ToUserResponse())
	}
	return &models.GetUsersResponse{
		Users: responses,
		Page:  page,
		Size:  size,
		Total: total,
	}, nil
}
