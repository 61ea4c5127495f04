package services

import (
	"context"
	"errors"

	"health-service-api/internal/adapters/persistence/models"
	"health-service-api/internal/adapters/persistence/repositories"
	"health-service-api/internal/core/domain"
	"health-service-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// UserService exposes the pharmacist directory doctors use when assigning
// prescriptions. Only verified accounts are listed.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListPharmacists lists verified pharmacists
func (s *UserService) ListPharmacists(ctx context.Context, params *pagination.Params) ([]*models.UserResponse, *pagination.Meta, error) {
	users, total, err := s.userRepo.ListByRole(ctx, string(domain.RolePharmacist), params.Offset, params.Limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, pagination.NewMeta(params, total), nil
}

// GetPharmacist returns a verified pharmacist by ID
func (s *UserService) GetPharmacist(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if user.Role != string(domain.RolePharmacist) || !user.IsVerified {
		return nil, domain.ErrNotFound
	}
	return user.ToResponse(), nil
}
