package auth

import (
	"context"
	"testing"
	"time"

	"github.com/brameldering/bram-pos/internal/domain/model"
	"github.com/brameldering/bram-pos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type HasherMock struct{ mock.Mock }

func (m *HasherMock) Hash(plain string) (string, error) {
	args := m.Called(plain)
	return args.String(0), args.Error(1)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// =====================
// Tests
// =====================

func TestRegisterUser_Success(t *testing.T) {
	userRepo := &UserRepoMock{}
	hasher := &HasherMock{}
	clock := &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	uc := NewRegisterUserUsecase(userRepo, hasher, clock)

	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, nil)
	hasher.On("Hash", "correct-horse-battery").Return("hashed", nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "taro@example.com" &&
			u.PasswordHash == "hashed" &&
			u.Role == model.RoleUser &&
			u.TokenVersion == 0 &&
			u.IsActive
	})).Return(nil)

	out, err := uc.Execute(context.Background(), RegisterUserInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "correct-horse-battery",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Taro", out.User.Name)
	// 出力にハッシュを載せない
	assert.Empty(t, out.User.PasswordHash)
	userRepo.AssertExpectations(t)
	hasher.AssertExpectations(t)
}

func TestRegisterUser_ValidationErrors(t *testing.T) {
	uc := NewRegisterUserUsecase(&UserRepoMock{}, &HasherMock{}, &fixedClock{now: time.Now()})

	tests := []struct {
		name    string
		in      RegisterUserInput
		wantErr error
	}{
		{
			name:    "name required",
			in:      RegisterUserInput{Name: "  ", Email: "a@example.com", Password: "correct-horse-battery"},
			wantErr: ErrNameRequired,
		},
		{
			name:    "invalid email",
			in:      RegisterUserInput{Name: "Taro", Email: "not-an-email", Password: "correct-horse-battery"},
			wantErr: ErrInvalidEmailFormat,
		},
		{
			name:    "too short",
			in:      RegisterUserInput{Name: "Taro", Email: "a@example.com", Password: "short"},
			wantErr: ErrPasswordTooShort,
		},
		{
			name:    "weak password",
			in:      RegisterUserInput{Name: "Taro", Email: "a@example.com", Password: "123456789012"},
			wantErr: ErrWeakPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	userRepo := &UserRepoMock{}
	uc := NewRegisterUserUsecase(userRepo, &HasherMock{}, &fixedClock{now: time.Now()})

	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").
		Return(&model.User{ID: 1, Email: "taro@example.com"}, nil)

	_, err := uc.Execute(context.Background(), RegisterUserInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "correct-horse-battery",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterUser_DuplicateEmailRace(t *testing.T) {
	userRepo := &UserRepoMock{}
	hasher := &HasherMock{}
	uc := NewRegisterUserUsecase(userRepo, hasher, &fixedClock{now: time.Now()})

	// 重複チェックをすり抜けても、unique制約で同じエラーになる
	userRepo.On("FindByEmail", mock.Anything, "taro@example.com").Return(nil, nil)
	hasher.On("Hash", mock.Anything).Return("hashed", nil)
	userRepo.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail)

	_, err := uc.Execute(context.Background(), RegisterUserInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "correct-horse-battery",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}
