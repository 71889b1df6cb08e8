package auth

import (
	"context"
	"testing"
	"time"

	"github.com/brameldering/bram-pos/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type VerifierMock struct{ mock.Mock }

func (m *VerifierMock) Verify(plain string, hashed string) bool {
	args := m.Called(plain, hashed)
	return args.Bool(0)
}

type IssuerMock struct{ mock.Mock }

func (m *IssuerMock) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	args := m.Called(userID, role, tokenVersion, now)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func activeUser() *model.User {
	return &model.User{
		ID:           7,
		Name:         "Taro",
		Email:        "taro@example.com",
		PasswordHash: "hashed",
		Role:         model.RoleUser,
		TokenVersion: 3,
		IsActive:     true,
	}
}

func TestLogin_Success(t *testing.T) {
	userRepo := &UserRepoMock{}
	verifier := &VerifierMock{}
	issuer := &IssuerMock{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &fixedClock{now: now}

	uc := NewLoginUsecase(userRepo, verifier, issuer, clock)

	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(activeUser(), nil)
	verifier.On("Verify", "secret-password", "hashed").Return(true)
	issuer.On("Issue", int64(7), model.RoleUser, 3, now).
		Return("signed-token", now.Add(15*time.Minute), nil)
	userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.ID == 7 && u.LastLoginAt != nil && u.LastLoginAt.Equal(now)
	})).Return(nil)

	out, err := uc.Execute(context.Background(), LoginInput{
		Email:    "taro@example.com",
		Password: "secret-password",
	})

	assert.NoError(t, err)
	assert.Equal(t, "signed-token", out.Token.AccessToken)
	assert.Equal(t, 900, out.Token.ExpiresIn)
	assert.Equal(t, 3, out.Token.TokenVersion)
	assert.Empty(t, out.User.PasswordHash)
	userRepo.AssertExpectations(t)
}

func TestLogin_UnknownEmail(t *testing.T) {
	userRepo := &UserRepoMock{}
	uc := NewLoginUsecase(userRepo, &VerifierMock{}, &IssuerMock{}, &fixedClock{now: time.Now()})

	userRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

	_, err := uc.Execute(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := &UserRepoMock{}
	verifier := &VerifierMock{}
	uc := NewLoginUsecase(userRepo, verifier, &IssuerMock{}, &fixedClock{now: time.Now()})

	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(activeUser(), nil)
	verifier.On("Verify", "wrong", "hashed").Return(false)

	_, err := uc.Execute(context.Background(), LoginInput{
		Email:    "taro@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUser(t *testing.T) {
	userRepo := &UserRepoMock{}
	uc := NewLoginUsecase(userRepo, &VerifierMock{}, &IssuerMock{}, &fixedClock{now: time.Now()})

	u := activeUser()
	u.IsActive = false
	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(u, nil)

	_, err := uc.Execute(context.Background(), LoginInput{
		Email:    "taro@example.com",
		Password: "secret-password",
	})

	assert.ErrorIs(t, err, ErrUserInactive)
}
