package auth

import (
	"github.com/google/uuid"

	"github.com/pulppixels/pulppixels-backend/pkg/db/models"
)

// LoginRequest captures the credentials sent to the admin login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDTO is the admin account shape returned by the console API.
type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// LoginResponse contains the token pair issued on a successful login.
type LoginResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

func toUserDTO(user *models.User) UserDTO {
	return UserDTO{ID: user.ID, Email: user.Email}
}
