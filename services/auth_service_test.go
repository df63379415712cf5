package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"personal-chat/auth"
	"personal-chat/errors"
	"personal-chat/mocks"
	"personal-chat/repositories"
)

func testIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("unit-test-secret", time.Hour)
}

func registerRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		FirstName: "Alice",
		LastName:  "Martin",
		Email:     "alice@example.com",
		Password:  "Str0ng!pass",
	}
}

func TestAuthService_Register(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)

	// Given a free email; the stored record carries a hash, never the
	// plaintext password
	users.EXPECT().CreateUser(gomock.Any()).DoAndReturn(
		func(user repositories.User) (string, error) {
			require.Equal(t, "alice@example.com", user.Email)
			require.NotEmpty(t, user.PasswordHash)
			require.NotContains(t, user.PasswordHash, "Str0ng!pass")
			return "user-1", nil
		})

	service := NewAuthService(users, testIssuer())

	// When registering
	token, err := service.Register(registerRequest())

	// Then the issued token identifies the new user
	req.NoError(err)
	claims, err := testIssuer().Validate(string(token))
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("alice@example.com", claims.Email)
}

func TestAuthService_Register_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	users.EXPECT().CreateUser(gomock.Any()).Return("", errors.ErrUserAlreadyExists)

	service := NewAuthService(users, testIssuer())

	_, err := service.Register(registerRequest())
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func TestAuthService_Register_Weak_Password(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	// No CreateUser expectation: validation fails before any repository call

	service := NewAuthService(users, testIssuer())

	request := registerRequest()
	request.Password = "alllowercase"
	_, err := service.Register(request)
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestAuthService_Login(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	hash, err := auth.HashPassword("Str0ng!pass")
	req.NoError(err)

	users := mocks.NewMockIUserRepository(ctrl)
	users.EXPECT().GetUserByEmail("alice@example.com").Return(repositories.User{
		ID:           "user-1",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Roles:        []string{"user"},
	}, nil)

	service := NewAuthService(users, testIssuer())

	token, err := service.Login("alice@example.com", "Str0ng!pass")
	req.NoError(err)

	claims, err := testIssuer().Validate(string(token))
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
}

func TestAuthService_Login_Failures_Are_Indistinguishable(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)

	hash, err := auth.HashPassword("Str0ng!pass")
	req.NoError(err)

	users := mocks.NewMockIUserRepository(ctrl)
	users.EXPECT().GetUserByEmail("ghost@example.com").
		Return(repositories.User{}, errors.ErrInvalidCredentials)
	users.EXPECT().GetUserByEmail("alice@example.com").
		Return(repositories.User{Email: "alice@example.com", PasswordHash: hash}, nil)

	service := NewAuthService(users, testIssuer())

	// Unknown email and wrong password both yield the same error
	_, unknownErr := service.Login("ghost@example.com", "Str0ng!pass")
	_, wrongErr := service.Login("alice@example.com", "wrong-password")
	req.ErrorIs(unknownErr, errors.ErrInvalidCredentials)
	req.ErrorIs(wrongErr, errors.ErrInvalidCredentials)
	req.Equal(unknownErr, wrongErr)
}
