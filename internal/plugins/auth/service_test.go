package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Subodhrana390/cropsense/internal/apperror"
)

// mockUserRepo implements UserRepository for testing. Unset funcs fall
// back to "not found" / empty defaults.
type mockUserRepo struct {
	createFn        func(ctx context.Context, user *User) error
	findByIDFn      func(ctx context.Context, id string) (*User, error)
	findByEmailFn   func(ctx context.Context, email string) (*User, error)
	emailExistsFn   func(ctx context.Context, email string) (bool, error)
	listExcludingFn func(ctx context.Context, id string) ([]User, error)

	createCalls      int
	emailExistsCalls int
}

func (m *mockUserRepo) Create(ctx context.Context, user *User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, apperror.NewNotFound("user not found")
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	m.emailExistsCalls++
	if m.emailExistsFn != nil {
		return m.emailExistsFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepo) ListExcluding(ctx context.Context, id string) ([]User, error) {
	if m.listExcludingFn != nil {
		return m.listExcludingFn(ctx, id)
	}
	return nil, nil
}

func newTestService(t *testing.T, repo *mockUserRepo) (AuthService, *TokenService) {
	t.Helper()
	ts, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return NewAuthService(repo, ts), ts
}

func validSignup() SignupRequest {
	return SignupRequest{
		Name:            "Asha Patel",
		Email:           "a@x.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}
}

func TestSignup_Success(t *testing.T) {
	var stored *User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			stored = user
			return nil
		},
	}
	svc, _ := newTestService(t, repo)

	user, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, user.ID, stored.ID)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "Asha Patel", stored.Name)
	assert.Equal(t, "a@x.com", stored.Email)

	// The stored hash verifies against the original password and never
	// contains it.
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
	assert.NotContains(t, stored.PasswordHash, "secret1")
}

func TestSignup_MismatchedPasswordsFailBeforeStorage(t *testing.T) {
	repo := &mockUserRepo{}
	svc, _ := newTestService(t, repo)

	req := validSignup()
	req.ConfirmPassword = "different"

	_, err := svc.Signup(context.Background(), req)
	require.Error(t, err)

	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 422, appErr.Code)
	assert.Contains(t, appErr.Message, "must match password")

	// Validation failed before anything touched the repository.
	assert.Zero(t, repo.emailExistsCalls)
	assert.Zero(t, repo.createCalls)
}

func TestSignup_AllViolationsReported(t *testing.T) {
	repo := &mockUserRepo{}
	svc, _ := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Name:            "A",
		Email:           "not-an-email",
		Password:        "abc",
		ConfirmPassword: "xyz",
	})
	require.Error(t, err)

	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)

	// Every violated constraint shows up, not just the first.
	assert.Len(t, appErr.Fields, 4)
	joined := appErr.Message
	assert.Contains(t, joined, "name")
	assert.Contains(t, joined, "email")
	assert.Contains(t, joined, "password")
	assert.Contains(t, joined, "confirm_password")
}

func TestSignup_DuplicateEmailConflict(t *testing.T) {
	repo := &mockUserRepo{
		emailExistsFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	svc, _ := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), validSignup())
	require.Error(t, err)

	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 409, appErr.Code)
	assert.Contains(t, appErr.Message, "already exists")

	// The conflict short-circuits before the hash is computed or stored.
	assert.Zero(t, repo.createCalls)
}

func TestSignup_StorageFailureIsGeneric(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *User) error {
			return errors.New("mariadb: connection refused to 10.0.0.3")
		},
	}
	svc, _ := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), validSignup())
	require.Error(t, err)

	// Internal detail stays out of the client-safe message.
	assert.NotContains(t, apperror.SafeMessage(err), "10.0.0.3")
	assert.Equal(t, 500, apperror.SafeCode(err))
}

// loginErr runs a login and returns the client-safe failure message.
func loginErr(t *testing.T, svc AuthService, email, password string) string {
	t.Helper()
	_, _, err := svc.Login(context.Background(), LoginRequest{Email: email, Password: password})
	require.Error(t, err)
	assert.Equal(t, 401, apperror.SafeCode(err))
	return apperror.SafeMessage(err)
}

func TestLogin_UnknownEmailAndWrongPasswordIndistinguishable(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcryptCost)
	require.NoError(t, err)

	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			if email == "a@x.com" {
				return &User{ID: "u1", Name: "Asha", Email: email, PasswordHash: string(hash)}, nil
			}
			return nil, apperror.NewNotFound("user not found")
		},
	}
	svc, _ := newTestService(t, repo)

	unknownMsg := loginErr(t, svc, "nobody@x.com", "secret1")
	wrongPwMsg := loginErr(t, svc, "a@x.com", "wrong")

	// Byte-identical: the caller cannot tell which case happened.
	assert.Equal(t, unknownMsg, wrongPwMsg)
}

func TestLogin_SuccessIssuesVerifiableToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcryptCost)
	require.NoError(t, err)

	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: "u1", Name: "Asha", Email: email, PasswordHash: string(hash)}, nil
		},
	}
	svc, ts := newTestService(t, repo)

	token, user, err := svc.Login(context.Background(), LoginRequest{
		Email:    "a@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "Asha", claims.Name)
}

func TestLogin_StorageFailureIsGeneric(t *testing.T) {
	repo := &mockUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return nil, errors.New("mariadb: gone away")
		},
	}
	svc, _ := newTestService(t, repo)

	_, _, err := svc.Login(context.Background(), LoginRequest{Email: "a@x.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, 500, apperror.SafeCode(err))
	assert.NotContains(t, apperror.SafeMessage(err), "gone away")
}

func TestSignupThenLogin_Flow(t *testing.T) {
	// In-memory repo wired from the mock's funcs.
	var users []*User
	repo := &mockUserRepo{}
	repo.createFn = func(ctx context.Context, user *User) error {
		users = append(users, user)
		return nil
	}
	repo.emailExistsFn = func(ctx context.Context, email string) (bool, error) {
		for _, u := range users {
			if u.Email == email {
				return true, nil
			}
		}
		return false, nil
	}
	repo.findByEmailFn = func(ctx context.Context, email string) (*User, error) {
		for _, u := range users {
			if u.Email == email {
				return u, nil
			}
		}
		return nil, apperror.NewNotFound("user not found")
	}

	svc, ts := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	token, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "a@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Asha Patel", claims.Name)

	// Wrong password after a successful signup still gets the generic
	// message and no token.
	msg := loginErr(t, svc, "a@x.com", "wrong")
	assert.Equal(t, "invalid email or password", msg)
}
