package service

import (
	"context"
	"strings"
	"time"

	"analytics"
	"analytics/internal/api/handler/mapper"
	"analytics/internal/api/handler/request"
	"analytics/internal/api/handler/response"
	"analytics/internal/api/repo"
	"analytics/internal/domain"
	"analytics/pkg"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const invalidCredentials = "invalid username or password"

type AuthService struct {
	userRepo   *repo.UserRepository
	roleRepo   *repo.RoleRepository
	throttle   LoginThrottle
	config     analytics.AppConfig
	logger     zerolog.Logger
	userMapper mapper.UserMapper
}

func NewAuthService(userRepo *repo.UserRepository, roleRepo *repo.RoleRepository, throttle LoginThrottle, config analytics.AppConfig, logger zerolog.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		throttle:   throttle,
		config:     config,
		logger:     logger,
		userMapper: mapper.NewUserMapper(),
	}
}

// Login reserves an attempt before touching the catalog, so a locked user is
// refused even with the right password. Only a successful login clears the
// counter.
func (slf *AuthService) Login(ctx context.Context, loginDTO request.LoginDTO) (*response.AuthResponseDTO, error) {
	username := strings.TrimSpace(loginDTO.Username)

	retryAfter, err := slf.throttle.Reserve(ctx, username)
	if err != nil {
		slf.logger.Error().Err(err).Str("username", username).Msg("Failed to count login attempt")
		return nil, err
	}
	if retryAfter > 0 {
		slf.logger.Warn().Str("username", username).Dur("retryAfter", retryAfter).Msg("Login refused, account locked")
		return nil, &domain.LockedError{Username: username, RetryAfter: retryAfter}
	}

	user, err := slf.userRepo.FindByUsername(username)
	if err != nil && !isNotFound(err) {
		slf.logger.Error().Err(err).Str("username", username).Msg("Error finding user by username")
		return nil, catalogError("find user", err)
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(loginDTO.Password)) != nil {
		return nil, domain.ErrAuth(invalidCredentials)
	}

	if !user.Active {
		return nil, domain.ErrAuth("account is inactive")
	}

	if err := slf.throttle.Reset(ctx, username); err != nil {
		slf.logger.Warn().Err(err).Str("username", username).Msg("Failed to reset login attempts")
	}

	expiration := time.Duration(slf.config.JWTConfig.Expiration) * time.Minute
	token, err := pkg.GenerateToken(user.Username, slf.config.JWTConfig.Secret, expiration)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error generating token")
		return nil, err
	}

	slf.logger.Info().Uint("userId", user.ID).Msg("User logged in successfully")
	return &response.AuthResponseDTO{AccessToken: token, TokenType: "bearer"}, nil
}

// CreateUser registers an account and optionally assigns its role.
func (slf *AuthService) CreateUser(dto request.CreateUserDTO) (*response.UserResponseDTO, error) {
	exists, err := slf.userRepo.ExistsByUsernameOrEmail(dto.Username, dto.Email)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error checking if user exists")
		return nil, catalogError("check user", err)
	}
	if exists {
		return nil, domain.ErrConflict("user with this username or email already exists")
	}

	if dto.RoleID != nil {
		if _, err := slf.roleRepo.FindRoleByID(*dto.RoleID); err != nil {
			if isNotFound(err) {
				return nil, domain.ErrNotFound("role %d not found", *dto.RoleID)
			}
			return nil, catalogError("find role", err)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error hashing password")
		return nil, err
	}

	user := slf.userMapper.ToUser(dto, string(hashedPassword))
	err = slf.userRepo.Db.Transaction(func(tx *gorm.DB) error {
		if err := repo.NewUserRepository(tx).Create(&user); err != nil {
			return err
		}
		if dto.RoleID != nil {
			return repo.NewRoleRepository(tx).AssignRole(user.Username, *dto.RoleID)
		}
		return nil
	})
	if err != nil {
		slf.logger.Error().Err(err).Str("username", dto.Username).Msg("Error creating user")
		return nil, catalogError("create user", err)
	}

	slf.logger.Info().Uint("userId", user.ID).Msg("User created")
	result := slf.userMapper.EntityToUserResponse(user)
	return &result, nil
}

func (slf *AuthService) ListUsers() ([]response.UserResponseDTO, error) {
	users, err := slf.userRepo.GetAll()
	if err != nil {
		slf.logger.Error().Err(err).Msg("Error listing users")
		return nil, catalogError("list users", err)
	}
	result := make([]response.UserResponseDTO, len(users))
	for i, u := range users {
		result[i] = slf.userMapper.EntityToUserResponse(u)
	}
	return result, nil
}
