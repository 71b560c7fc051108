package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"messenger-backend/internal/model"
)

type UserStore interface {
	CreateUser(username, phoneNumber, passwordHash string) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	GetUserByPhoneNumber(phoneNumber string) (*model.User, error)
	UpdateLastLogin(userID int64) error
}

type AuthService struct {
	Users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(users UserStore, jwtSecret string) *AuthService {
	return &AuthService{
		Users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
	}
}

func (s *AuthService) Register(username, phoneNumber, password string) (*model.User, error) {
	if len(username) < 3 {
		return nil, validationErrorf("username must be at least 3 characters")
	}
	if len(password) < 8 {
		return nil, validationErrorf("password must be at least 8 characters")
	}
	phone := NormalizeAddress(phoneNumber)
	if phone == "" {
		return nil, validationErrorf("phone number is required")
	}

	if existing, err := s.Users.GetUserByUsername(username); err != nil {
		return nil, storageError(err)
	} else if existing != nil {
		return nil, validationErrorf("username is already taken")
	}
	if existing, err := s.Users.GetUserByPhoneNumber(phone); err != nil {
		return nil, storageError(err)
	} else if existing != nil {
		return nil, validationErrorf("phone number is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.CreateUser(username, phone, string(hash))
	if err != nil {
		return nil, storageError(err)
	}
	return user, nil
}

// Login verifies the credentials and returns a signed token. Wrong username
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(username, password string) (string, *model.User, error) {
	user, err := s.Users.GetUserByUsername(username)
	if err != nil {
		return "", nil, storageError(err)
	}
	if user == nil {
		return "", nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrUnauthorized
	}

	if err := s.Users.UpdateLastLogin(user.ID); err != nil {
		return "", nil, storageError(err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) generateToken(userID int64) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
