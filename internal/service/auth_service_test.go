package service

import (
	"context"
	"testing"

	"photoalbum/internal/models"
	"photoalbum/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T) (*AuthService, *testutil.UserRepoStub) {
	t.Helper()
	repo := testutil.NewUserRepoStub()
	return NewAuthService(repo, bcrypt.MinCost), repo
}

func assertAppErrorCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestRegister_StoresHashAndVerifies(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "  alice ",
		Email:    "alice@example.com",
		Password: "s3cret!",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret!", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret!")))

	stored, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotContains(t, stored.Password, "s3cret!")

	identity, err := svc.Verify(ctx, "alice", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, &models.Identity{ID: user.ID, Username: "alice", Email: "alice@example.com"}, identity)
}

func TestRegister_Validation(t *testing.T) {
	svc, repo := newAuthService(t)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Email: "a@b.co", Password: "secret"}, "username"},
		{"bad email", RegisterInput{Username: "bob", Email: "nope", Password: "secret"}, "email"},
		{"short password", RegisterInput{Username: "bob", Email: "a@b.co", Password: "12345"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			appErr := assertAppErrorCode(t, err, models.CodeValidation)
			require.NotEmpty(t, appErr.Fields)
			assert.Equal(t, tt.field, appErr.Fields[0].Field)
		})
	}
	assert.Zero(t, repo.Len())
}

func TestRegister_PasswordMismatch(t *testing.T) {
	svc, repo := newAuthService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:        "carol",
		Email:           "carol@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})
	assertAppErrorCode(t, err, models.CodePasswordMismatch)
	assert.Zero(t, repo.Len())
}

func TestRegister_Duplicates(t *testing.T) {
	svc, repo := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "dave", Email: "dave@example.com", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "dave", Email: "other@example.com", Password: "secret"})
	assertAppErrorCode(t, err, models.CodeDuplicateUsername)

	_, err = svc.Register(ctx, RegisterInput{Username: "dave2", Email: "dave@example.com", Password: "secret"})
	assertAppErrorCode(t, err, models.CodeDuplicateEmail)

	assert.Equal(t, 1, repo.Len())
}

func TestRegister_ConcurrentDuplicateLosesAtInsert(t *testing.T) {
	svc, repo := newAuthService(t)
	repo.BeforeCreate = func(*models.User) error {
		return models.NewDuplicateUsernameError()
	}

	_, err := svc.Register(context.Background(), RegisterInput{Username: "erin", Email: "erin@example.com", Password: "secret"})
	assertAppErrorCode(t, err, models.CodeDuplicateUsername)
	assert.Zero(t, repo.Len())
}

func TestVerify_SameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "frank", Email: "frank@example.com", Password: "secret"})
	require.NoError(t, err)

	_, wrongPassword := svc.Verify(ctx, "frank", "not-it")
	_, unknownUser := svc.Verify(ctx, "nobody", "secret")

	a := assertAppErrorCode(t, wrongPassword, models.CodeInvalidCredentials)
	b := assertAppErrorCode(t, unknownUser, models.CodeInvalidCredentials)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, models.InvalidCredentialsText, a.Message)
}

func TestVerify_EmptyFields(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Verify(context.Background(), " ", "secret")
	assertAppErrorCode(t, err, models.CodeValidation)

	_, err = svc.Verify(context.Background(), "frank", "")
	assertAppErrorCode(t, err, models.CodeValidation)
}

func TestNewAuthService_ClampsCost(t *testing.T) {
	svc := NewAuthService(testutil.NewUserRepoStub(), 99)
	assert.Equal(t, bcrypt.DefaultCost, svc.bcryptCost)
}
