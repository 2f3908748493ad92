package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/user"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserService_Authenticate(t *testing.T) {
	stored := &user.User{ID: 1, Username: "admin", PasswordHash: hashFor(t, "s3cret")}

	tests := []struct {
		name      string
		username  string
		password  string
		setup     func(m *MockUserRepository)
		wantErrIs error
		wantErr   bool
	}{
		{
			name:     "success",
			username: " admin ",
			password: "s3cret",
			setup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "admin").Return(stored, nil).Once()
			},
		},
		{
			name:     "wrong_password",
			username: "admin",
			password: "nope",
			setup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "admin").Return(stored, nil).Once()
			},
			wantErr:   true,
			wantErrIs: user.ErrInvalidCredentials,
		},
		{
			name:     "unknown_user",
			username: "ghost",
			password: "s3cret",
			setup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "ghost").Return(nil, user.ErrNotFound).Once()
			},
			wantErr:   true,
			wantErrIs: user.ErrInvalidCredentials,
		},
		{
			name:      "empty_password",
			username:  "admin",
			password:  "",
			setup:     func(m *MockUserRepository) {},
			wantErr:   true,
			wantErrIs: user.ErrInvalidCredentials,
		},
		{
			name:     "storage_error",
			username: "admin",
			password: "s3cret",
			setup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "admin").Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setup(mockRepo)
			svc := user.NewServiceWithCost(mockRepo, bcrypt.MinCost)

			u, err := svc.Authenticate(context.Background(), tt.username, tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, u)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				} else {
					assert.NotErrorIs(t, err, user.ErrInvalidCredentials)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, stored.ID, u.ID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_EnsureUser_Creates(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewServiceWithCost(mockRepo, bcrypt.MinCost)

	mockRepo.On("GetByUsername", mock.Anything, "admin").Return(nil, user.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*user.User).ID = 7
		}).
		Return(int64(7), nil).
		Once()

	u, created, err := svc.EnsureUser(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.True(t, created)

	want := &user.User{ID: 7, Username: "admin"}
	if diff := cmp.Diff(want, u, cmpopts.IgnoreFields(user.User{}, "PasswordHash", "CreatedAt")); diff != "" {
		t.Errorf("EnsureUser() mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	mockRepo.AssertExpectations(t)
}

func TestUserService_EnsureUser_Existing(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewServiceWithCost(mockRepo, bcrypt.MinCost)

	existing := &user.User{ID: 3, Username: "admin", PasswordHash: hashFor(t, "s3cret")}
	mockRepo.On("GetByUsername", mock.Anything, "admin").Return(existing, nil).Once()

	u, created, err := svc.EnsureUser(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, u)

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUserService_EnsureUser_PasswordChanged(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewServiceWithCost(mockRepo, bcrypt.MinCost)

	existing := &user.User{ID: 3, Username: "admin", PasswordHash: hashFor(t, "old")}
	mockRepo.On("GetByUsername", mock.Anything, "admin").Return(existing, nil).Once()
	mockRepo.On("UpdatePassword", mock.Anything, int64(3), mock.AnythingOfType("string")).Return(nil).Once()

	u, created, err := svc.EnsureUser(context.Background(), "admin", "new")
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new")))

	stored := mockRepo.Calls[1].Arguments.String(2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("new")))

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestUserService_EnsureUser_PasswordUpdateFails(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewServiceWithCost(mockRepo, bcrypt.MinCost)

	existing := &user.User{ID: 3, Username: "admin", PasswordHash: hashFor(t, "old")}
	mockRepo.On("GetByUsername", mock.Anything, "admin").Return(existing, nil).Once()
	mockRepo.On("UpdatePassword", mock.Anything, int64(3), mock.AnythingOfType("string")).Return(errors.New("db down")).Once()

	_, _, err := svc.EnsureUser(context.Background(), "admin", "new")
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestUserService_EnsureUser_Empty(t *testing.T) {
	svc := user.NewService(new(MockUserRepository))

	_, _, err := svc.EnsureUser(context.Background(), " ", "x")
	assert.Error(t, err)
}

func TestUserService_GetUserByID(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := user.NewService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(&user.User{ID: 1, Username: "admin"}, nil).Once()
	mockRepo.On("GetByID", mock.Anything, int64(2)).Return(nil, user.ErrNotFound).Once()

	u, err := svc.GetUserByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Username)

	_, err = svc.GetUserByID(context.Background(), 2)
	assert.ErrorIs(t, err, user.ErrNotFound)

	mockRepo.AssertExpectations(t)
}
