package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Subodhrana390/cropsense/internal/apperror"
)

// bcryptCost is the fixed work factor for password hashing.
const bcryptCost = 10

// genericLoginError is the single message for every failed login. Unknown
// email and wrong password must be byte-identical to the caller so the
// endpoint can't be used to enumerate accounts.
const genericLoginError = "invalid email or password"

// AuthService defines the authentication actions. Handlers call these;
// they never touch the repository or the token service directly.
type AuthService interface {
	// Signup validates the request, rejects duplicate emails, and stores
	// a new user. It returns the created user and no token: the caller
	// must log in separately.
	Signup(ctx context.Context, req SignupRequest) (*User, error)

	// Login checks credentials and issues a session token on success.
	Login(ctx context.Context, req LoginRequest) (token string, user *User, err error)
}

// authService implements AuthService with bcrypt hashing and JWT sessions.
type authService struct {
	repo   UserRepository
	tokens *TokenService
}

// NewAuthService creates an auth service with the given collaborators.
func NewAuthService(repo UserRepository, tokens *TokenService) AuthService {
	return &authService{repo: repo, tokens: tokens}
}

// Signup creates a new user account.
func (s *authService) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	// Field validation happens before anything touches storage, and every
	// violated constraint is reported at once.
	if err := req.Validate(); err != nil {
		return nil, apperror.NewValidation(validationMessages(err))
	}

	email := strings.TrimSpace(req.Email)

	// The duplicate check runs before the bcrypt work so a conflicting
	// signup doesn't pay for a hash it will never store. The fast-fail is
	// a (known, accepted) timing hint that an email is taken; signup
	// already confirms that via its error message anyway.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login authenticates a user by email and password and issues a session
// token. Unknown email and bad password take the same failure path.
func (s *authService) Login(ctx context.Context, req LoginRequest) (string, *User, error) {
	if err := req.Validate(); err != nil {
		return "", nil, apperror.NewValidation(validationMessages(err))
	}

	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return "", nil, apperror.NewUnauthorized(genericLoginError)
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, apperror.NewUnauthorized(genericLoginError)
	}

	token, err := s.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return token, user, nil
}
