package auth

import (
	"context"
	"errors"

	"photodrop/internal/domain"
	"photodrop/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type jwtService interface {
	GenerateToken(adminID int64, email string) (string, error)
}

type Service struct {
	admins *repository.AdminUserRepository
	jwt    jwtService
}

func NewService(admins *repository.AdminUserRepository, jwt jwtService) *Service {
	return &Service{admins: admins, jwt: jwt}
}

type LoginResult struct {
	Admin *domain.AdminUser
	Token string
}

// Login checks the password against the stored bcrypt hash and issues a
// token. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(admin.ID, admin.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Admin: admin, Token: token}, nil
}
