package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/thysis/room-designer-api/internal/email"
	"github.com/thysis/room-designer-api/internal/logging"
	"github.com/thysis/room-designer-api/internal/user"
)

var (
	ErrInvalidCredentials   = errors.New("invalid password")
	ErrInvalidOrExpiredCode = errors.New("reset code is invalid or has expired")
	ErrUsernameRequired     = errors.New("username is required")
	ErrEmailRequired        = errors.New("email is required")
	ErrPasswordRequired     = errors.New("password is required")
	ErrPasswordTooShort     = errors.New("password must be at least 8 characters")
	ErrInvalidEmailFormat   = errors.New("invalid email format")
)

// UserRepository is the slice of the user store the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, username, email, passwordHash string) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

// ResetCodeStore holds short-lived password reset codes.
type ResetCodeStore interface {
	Store(ctx context.Context, email, code string, expiresAt time.Time) error
	Get(ctx context.Context, email string) (code string, expiresAt time.Time, err error)
	Delete(ctx context.Context, email string) error
}

// Notifier delivers the reset code to the user. Injected at startup,
// never a process-wide singleton.
type Notifier interface {
	SendPasswordResetCode(ctx context.Context, toEmail, code string) error
}

// Service handles authentication business logic
type Service struct {
	userRepo     UserRepository
	resetCodes   ResetCodeStore
	notifier     Notifier
	logger       *logging.Logger
	bcryptCost   int
	resetCodeTTL time.Duration
	now          func() time.Time
}

func NewService(
	userRepo UserRepository,
	resetCodes ResetCodeStore,
	notifier Notifier,
	logger *logging.Logger,
	bcryptCost int,
	resetCodeTTL time.Duration,
) *Service {
	return &Service{
		userRepo:     userRepo,
		resetCodes:   resetCodes,
		notifier:     notifier,
		logger:       logger,
		bcryptCost:   bcryptCost,
		resetCodeTTL: resetCodeTTL,
		now:          time.Now,
	}
}

// Register creates a new user account.
// Returns user.ErrDuplicate when the username or email is already taken.
func (s *Service) Register(ctx context.Context, username, emailAddr, password string) (*user.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if emailAddr == "" {
		return nil, ErrEmailRequired
	}
	if len(emailAddr) > 254 {
		return nil, ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, ErrInvalidEmailFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := s.hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, username, emailAddr, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return nil, user.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login authenticates a user by username or email. An identifier containing
// "@" is treated as an email, anything else as a username.
func (s *Service) Login(ctx context.Context, identifier, password string) (*user.User, error) {
	if identifier == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	var existingUser *user.User
	var err error
	if strings.Contains(identifier, "@") {
		existingUser, err = s.userRepo.GetByEmail(ctx, identifier)
	} else {
		existingUser, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.verifyPassword(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	loginAt := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, existingUser.ID, loginAt); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	existingUser.LastLogin = loginAt

	return existingUser, nil
}

// RequestPasswordReset generates a 6-digit code, stores it with a TTL and
// mails it to the user. Delivery happens synchronously so a transport
// failure surfaces to the caller; the stored code is rolled back in that
// case so a code the user never received cannot linger.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	expiresAt := s.now().Add(s.resetCodeTTL)
	if err := s.resetCodes.Store(ctx, existingUser.Email, code, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	if err := s.notifier.SendPasswordResetCode(ctx, existingUser.Email, code); err != nil {
		if delErr := s.resetCodes.Delete(ctx, existingUser.Email); delErr != nil {
			s.logger.Warn("failed to roll back undelivered reset code", "error", delErr)
		}
		if errors.Is(err, email.ErrDeliveryUnavailable) {
			return email.ErrDeliveryUnavailable
		}
		return fmt.Errorf("failed to send reset code: %w", err)
	}

	return nil
}

// ResetPassword replaces the user's password if the code matches and has
// not expired. The code is single-use: it is cleared on success.
func (s *Service) ResetPassword(ctx context.Context, emailAddr, code, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if len(newPassword) < 8 {
		return ErrPasswordTooShort
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	storedCode, expiresAt, err := s.resetCodes.Get(ctx, existingUser.Email)
	if err != nil {
		if errors.Is(err, ErrResetCodeNotFound) {
			return ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("failed to get reset code: %w", err)
	}

	// A matching code past its expiry is still rejected.
	if storedCode != code || s.now().After(expiresAt) {
		return ErrInvalidOrExpiredCode
	}

	passwordHash, err := s.hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, existingUser.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := s.resetCodes.Delete(ctx, existingUser.Email); err != nil {
		s.logger.Warn("failed to delete used reset code", "error", err)
	}

	return nil
}

// hashPassword creates a bcrypt hash of the password
func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword checks if a password matches the stored hash
func (s *Service) verifyPassword(encodedHash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}

// generateResetCode creates a cryptographically random 6-digit numeric code
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
