package auth

import (
	"context"
	"errors"

	"github.com/brameldering/bram-pos/internal/repository"
)

var ErrProfileNotFound = errors.New("profile not found")

// 自分のプロフィール（名前・メール）
type ProfileOutput struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type ProfileUsecase struct {
	userRepo repository.UserRepository
}

func NewProfileUsecase(userRepo repository.UserRepository) *ProfileUsecase {
	return &ProfileUsecase{userRepo: userRepo}
}

func (u *ProfileUsecase) Execute(ctx context.Context, userID int64) (ProfileOutput, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return ProfileOutput{}, err
	}
	if user == nil {
		return ProfileOutput{}, ErrProfileNotFound
	}

	return ProfileOutput{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}, nil
}
