package services

import (
	stderrors "errors"
	"fmt"

	"personal-chat/auth"
	"personal-chat/errors"
	"personal-chat/repositories"
)

type IAuthService interface {
	Register(req auth.RegisterRequest) (Token, error)
	Login(email, password string) (Token, error)
	Users() ([]repositories.User, error)
}

type Token string

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenIssuer
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenIssuer) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(req auth.RegisterRequest) (Token, error) {
	// Validate business rules before any expensive cryptographic work.
	if err := auth.ValidateRegister(req); err != nil {
		if stderrors.Is(err, errors.ErrInvalidPassword) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}

	// Hash in the service layer so the repository never sees plaintext.
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(repositories.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Mobile:    req.Mobile,
		Email:     req.Email,
		Address: repositories.Address{
			Street:  req.Street,
			City:    req.City,
			State:   req.State,
			Country: req.Country,
		},
		LoginID:      req.LoginID,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists when the email is taken
	}

	token, err := s.tokens.Generate(userID, req.Email, []string{"user"})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Roles)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Users() ([]repositories.User, error) {
	return s.userRepository.ListUsers()
}
