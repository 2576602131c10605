package services

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courseboard/api/internal/constants"
	apierrors "github.com/courseboard/api/internal/errors"
	"github.com/courseboard/api/internal/models"
	"github.com/courseboard/api/internal/repository"
	"github.com/courseboard/api/internal/uow"
	"github.com/courseboard/api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidVerifyKey   = errors.New("invalid verification key")
)

// AuthService owns accounts and credentials: signup, login against the
// stored or temporary password, cookie tokens and email verification.
type AuthService struct {
	users repository.UserRepository

	// cookieSalt is the application-wide salt mixed into cookie tokens
	// on top of each user's own cookie salt.
	cookieSalt string

	now func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repository.UserRepository, cookieSalt string) *AuthService {
	return &AuthService{
		users:      users,
		cookieSalt: cookieSalt,
		now:        time.Now,
	}
}

// UserFromID resolves a user through the scope's identity map.
func (s *AuthService) UserFromID(scope *uow.Scope, id int64) (*models.User, error) {
	if cached, ok := scope.Cache.Get(uow.KindUser, id); ok {
		return cached.(*models.User), nil
	}

	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NotFoundError("user does not exist")
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	scope.Cache.Set(uow.KindUser, id, user)
	return user, nil
}

// SignupInput represents parameters to register a new account.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Signup registers a new account with fresh password and cookie salts.
func (s *AuthService) Signup(scope *uow.Scope, input SignupInput) (*models.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if firstName == "" || lastName == "" {
		return nil, apierrors.ValidationError("first and last name cannot be empty")
	}
	if !utils.IsValidEmail(email) {
		return nil, apierrors.ValidationError("invalid email address")
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, apierrors.ValidationError(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}

	if _, err := s.users.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordSalt, err := utils.RandomHex(16)
	if err != nil {
		return nil, err
	}
	cookieSalt, err := utils.RandomHex(16)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hashPassword(input.Password, passwordSalt),
		PasswordSalt: passwordSalt,
		CookieSalt:   cookieSalt,
	}
	if err := s.users.Create(user); err != nil {
		return nil, apierrors.PersistenceError("failed to create user", err)
	}

	scope.Cache.Set(uow.KindUser, user.ID, user)
	return user, nil
}

// Login checks the password against the stored hash, falling back to an
// unexpired temporary password. A successful temporary login promotes
// the temporary password to the real one so it keeps working.
func (s *AuthService) Login(scope *uow.Scope, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if hashEquals(hashPassword(password, user.PasswordSalt), user.PasswordHash) {
		scope.Cache.Set(uow.KindUser, user.ID, user)
		return user, nil
	}

	if s.tempPasswordValid(user) && hashEquals(hashPassword(password, user.PasswordSalt), user.TempPasswordHash) {
		updated := *user
		updated.PasswordHash = user.TempPasswordHash
		updated.TempPasswordHash = ""
		updated.TempPasswordAt = 0
		if err := s.users.Update(&updated); err != nil {
			return nil, apierrors.PersistenceError("failed to promote temporary password", err)
		}
		*user = updated
		scope.Cache.Set(uow.KindUser, user.ID, user)
		return user, nil
	}

	return nil, ErrInvalidCredentials
}

// IssueTempPassword stores a fresh short-lived password for the account
// and returns the cleartext for delivery. The stored password stays
// valid; whichever is used first wins.
func (s *AuthService) IssueTempPassword(scope *uow.Scope, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apierrors.NotFoundError("no account with this email")
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	temp, err := utils.GenerateTempPassword()
	if err != nil {
		return "", err
	}

	updated := *user
	updated.TempPasswordHash = hashPassword(temp, user.PasswordSalt)
	updated.TempPasswordAt = s.now().Unix()
	if err := s.users.Update(&updated); err != nil {
		return "", apierrors.PersistenceError("failed to store temporary password", err)
	}

	*user = updated
	scope.Cache.Set(uow.KindUser, user.ID, user)
	return temp, nil
}

// ChangePassword replaces the password after checking the current one.
// Clears any outstanding temporary password.
func (s *AuthService) ChangePassword(scope *uow.Scope, user *models.User, current, next string) error {
	if !hashEquals(hashPassword(current, user.PasswordSalt), user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if len(next) < constants.MinPasswordLength {
		return apierrors.ValidationError(fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	}

	updated := *user
	updated.PasswordHash = hashPassword(next, user.PasswordSalt)
	updated.TempPasswordHash = ""
	updated.TempPasswordAt = 0
	if err := s.users.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to change password", err)
	}

	*user = updated
	scope.Cache.Set(uow.KindUser, user.ID, user)
	return nil
}

// VerifyKey derives the account's email verification key. It is
// deterministic so the verification email needs no stored token.
func (s *AuthService) VerifyKey(user *models.User) string {
	return sha1Hex(user.Email + user.PasswordSalt + s.cookieSalt)
}

// VerifyEmail marks the account verified when the key matches.
func (s *AuthService) VerifyEmail(scope *uow.Scope, user *models.User, key string) error {
	if !hashEquals(key, s.VerifyKey(user)) {
		return ErrInvalidVerifyKey
	}
	if user.EmailVerified {
		return nil
	}

	updated := *user
	updated.EmailVerified = true
	if err := s.users.Update(&updated); err != nil {
		return apierrors.PersistenceError("failed to verify email", err)
	}

	user.EmailVerified = true
	scope.Cache.Set(uow.KindUser, user.ID, user)
	return nil
}

// CookieToken derives the remember-me token for the user. It is a hash
// of the password hash, so changing the password invalidates it.
func (s *AuthService) CookieToken(user *models.User) string {
	return hashPassword(user.PasswordHash, user.CookieSalt+s.cookieSalt)
}

// CheckCookieToken reports whether the presented token is the user's.
func (s *AuthService) CheckCookieToken(user *models.User, token string) bool {
	return hashEquals(token, s.CookieToken(user))
}

func (s *AuthService) tempPasswordValid(user *models.User) bool {
	if user.TempPasswordHash == "" || user.TempPasswordAt == 0 {
		return false
	}
	return s.now().Unix()-user.TempPasswordAt <= constants.TempPasswordTTL
}

// hashPassword is a double round of sha1 with the salt mixed into the
// second round. Kept for wire compatibility with existing accounts.
func hashPassword(password, salt string) string {
	return sha1Hex(sha1Hex(password) + salt)
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func hashEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
