package mapper

import (
	"analytics/internal/api/handler/request"
	"analytics/internal/api/handler/response"
	"analytics/internal/api/models"
)

type UserMapper interface {
	ToUser(req request.CreateUserDTO, hashedPassword string) models.User
	EntityToUserResponse(user models.User) response.UserResponseDTO
}

type UserMapperImpl struct{}

func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}

func (m *UserMapperImpl) ToUser(req request.CreateUserDTO, hashedPassword string) models.User {
	return models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hashedPassword,
		Active:   true,
	}
}

func (m *UserMapperImpl) EntityToUserResponse(user models.User) response.UserResponseDTO {
	return response.UserResponseDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Active:   user.Active,
	}
}
