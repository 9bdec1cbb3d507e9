package usecase

import (
	"context"

	"farmlink/internal/domain/entity"
	"farmlink/internal/domain/repository"
)

type UserUseCase struct {
	userRepo     repository.UserRepository
	firebaseAuth FirebaseAuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, firebaseAuth FirebaseAuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		firebaseAuth: firebaseAuth,
	}
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	FullName string
	Phone    string
	Location string
	Bio      string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = input.FullName
	user.Phone = input.Phone
	user.Location = input.Location
	user.Bio = input.Bio

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	return uc.firebaseAuth.UpdateUserPassword(ctx, userID, newPassword)
}

// ListFarmers pages through farmer profiles for the public directory.
func (uc *UserUseCase) ListFarmers(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	return uc.userRepo.FindByField(ctx, "role", entity.RoleFarmer, limit, offset)
}
