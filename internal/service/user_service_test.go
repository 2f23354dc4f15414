package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testJWTSecret = []byte("test-secret")

type userFixture struct {
	repo *memUserRepo
	svc  UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	repo := newMemUserRepo()
	return &userFixture{repo: repo, svc: NewUserService(repo, testJWTSecret)}
}

func (f *userFixture) addUser(t *testing.T, email, password, role string, active bool) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return f.repo.add(&model.User{
		Username: email,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		IsActive: active,
	})
}

func TestCreateUser(t *testing.T) {
	f := newUserFixture(t)

	resp, err := f.svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "manager1",
		Email:    "manager1@example.com",
		Phone:    "555-0100",
		Password: "s3cret!",
		Role:     model.RoleFleetManager,
	})
	require.NoError(t, err)

	assert.Equal(t, model.RoleFleetManager, resp.Role)
	assert.True(t, resp.IsActive)

	stored, err := f.repo.GetByEmail(context.Background(), "manager1@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", stored.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret!")))
}

func TestCreateUserInvalidRole(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "x",
		Email:    "x@example.com",
		Password: "password",
		Role:     "superuser",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newUserFixture(t)
	f.addUser(t, "dup@example.com", "pw", model.RoleCustomer, true)

	_, err := f.svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "newname",
		Email:    "dup@example.com",
		Password: "password",
		Role:     model.RoleCustomer,
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestLoginIssuesSignedToken(t *testing.T) {
	f := newUserFixture(t)
	user := f.addUser(t, "admin@example.com", "hunter22", model.RoleAdmin, true)

	tokens, err := f.svc.Login(context.Background(), LoginUserRequest{
		Email:    "admin@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.Token)
	require.NotEmpty(t, tokens.RefreshToken)

	parsed, err := jwt.Parse(tokens.Token, func(token *jwt.Token) (interface{}, error) {
		return testJWTSecret, nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, model.RoleAdmin, claims["role"])

	stored, ok := f.repo.tokens[tokens.RefreshToken]
	require.True(t, ok)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newUserFixture(t)
	f.addUser(t, "admin@example.com", "hunter22", model.RoleAdmin, true)

	_, err := f.svc.Login(context.Background(), LoginUserRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newUserFixture(t)
	f.addUser(t, "gone@example.com", "hunter22", model.RoleCustomer, false)

	_, err := f.svc.Login(context.Background(), LoginUserRequest{
		Email:    "gone@example.com",
		Password: "hunter22",
	})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newUserFixture(t)
	f.addUser(t, "admin@example.com", "hunter22", model.RoleAdmin, true)
	ctx := context.Background()

	first, err := f.svc.Login(ctx, LoginUserRequest{Email: "admin@example.com", Password: "hunter22"})
	require.NoError(t, err)

	second, err := f.svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated token is single-use.
	_, err = f.svc.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newUserFixture(t)
	user := f.addUser(t, "admin@example.com", "hunter22", model.RoleAdmin, true)

	f.repo.tokens["stale"] = &model.RefreshToken{
		UserID:    user.ID,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	_, err := f.svc.Refresh(context.Background(), "stale")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshDeactivatedUser(t *testing.T) {
	f := newUserFixture(t)
	user := f.addUser(t, "admin@example.com", "hunter22", model.RoleAdmin, true)
	ctx := context.Background()

	tokens, err := f.svc.Login(ctx, LoginUserRequest{Email: "admin@example.com", Password: "hunter22"})
	require.NoError(t, err)

	user.IsActive = false
	_, err = f.svc.Refresh(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogoutRemovesToken(t *testing.T) {
	f := newUserFixture(t)
	f.addUser(t, "admin@example.com", "hunter22", model.RoleAdmin, true)
	ctx := context.Background()

	tokens, err := f.svc.Login(ctx, LoginUserRequest{Email: "admin@example.com", Password: "hunter22"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, tokens.RefreshToken))
	_, err = f.svc.Refresh(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateUserRole(t *testing.T) {
	f := newUserFixture(t)
	user := f.addUser(t, "staff@example.com", "pw", model.RoleCustomer, true)

	resp, err := f.svc.UpdateUser(context.Background(), user.ID.String(), UpdateUserRequest{Role: model.RoleFleetManager})
	require.NoError(t, err)
	assert.Equal(t, model.RoleFleetManager, resp.Role)

	_, err = f.svc.UpdateUser(context.Background(), user.ID.String(), UpdateUserRequest{Role: "root"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeleteUserRevokesTokens(t *testing.T) {
	f := newUserFixture(t)
	user := f.addUser(t, "admin@example.com", "hunter22", model.RoleAdmin, true)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, LoginUserRequest{Email: "admin@example.com", Password: "hunter22"})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteUser(ctx, user.ID.String()))

	assert.Empty(t, f.repo.tokens)
	_, err = f.svc.GetUserByID(ctx, user.ID.String())
	require.ErrorIs(t, err, ErrNotFound)
}
