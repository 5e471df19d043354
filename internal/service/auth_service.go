// Package service holds the application's use cases on top of the repositories.
package service

import (
	"context"
	"strings"
	"sync"

	"photoalbum/internal/models"
	"photoalbum/internal/observability"
	"photoalbum/internal/repository"
	"photoalbum/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthService owns credentials: it creates users with hashed passwords and
// verifies login attempts.
type AuthService struct {
	userRepo   repository.UserRepository
	bcryptCost int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(userRepo repository.UserRepository, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{userRepo: userRepo, bcryptCost: bcryptCost}
}

// Register validates the form, rejects taken usernames and emails, and stores
// the user with a bcrypt hash of the password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	var fields []models.FieldError
	if err := validation.ValidateUsername(in.Username); err != nil {
		fields = append(fields, models.FieldError{Field: "username", Message: err.Error()})
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		fields = append(fields, models.FieldError{Field: "email", Message: err.Error()})
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		fields = append(fields, models.FieldError{Field: "password", Message: err.Error()})
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}
	if in.ConfirmPassword != "" && in.ConfirmPassword != in.Password {
		return nil, models.NewPasswordMismatchError()
	}

	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		observability.AuthAttempts.WithLabelValues("register_duplicate").Inc()
		return nil, models.NewDuplicateUsernameError()
	}
	existing, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		observability.AuthAttempts.WithLabelValues("register_duplicate").Inc()
		return nil, models.NewDuplicateEmailError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	// The pre-checks race with concurrent registrations; the unique indexes
	// decide and the repository reports the loser as a duplicate.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if models.HasCode(err, models.CodeDuplicateUsername) || models.HasCode(err, models.CodeDuplicateEmail) {
			observability.AuthAttempts.WithLabelValues("register_duplicate").Inc()
		}
		return nil, err
	}

	observability.AuthAttempts.WithLabelValues("register_success").Inc()
	return user, nil
}

// Verify checks a username/password pair. Unknown users and wrong passwords
// produce the same error, and both pay for one bcrypt comparison.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	if password == "" {
		return nil, models.NewValidationError("Password is required")
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	hash := s.fallbackHash()
	if user != nil {
		hash = []byte(user.Password)
	}
	cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if user == nil || cmpErr != nil {
		observability.AuthAttempts.WithLabelValues("login_failure").Inc()
		return nil, models.NewInvalidCredentialsError()
	}

	observability.AuthAttempts.WithLabelValues("login_success").Inc()
	return user.Identity(), nil
}

// fallbackHash is compared against when the username is unknown.
func (s *AuthService) fallbackHash() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.bcryptCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
