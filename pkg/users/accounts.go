package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/unowned-ai/daybook/pkg/credentials"
)

var (
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidPin          = errors.New("pin must be 4 to 12 characters")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Register validates reg, hashes the password and creates the user.
func Register(ctx context.Context, conn *sql.DB, reg Registration) (User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)

	if err := validate.Struct(reg); err != nil {
		return User{}, fmt.Errorf("%w: %s", ErrInvalidRegistration, describeValidation(err))
	}

	hash, err := credentials.HashPassword(reg.Password)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return CreateUser(ctx, conn, reg.Username, reg.Email, hash)
}

// Login checks a username-or-email and password pair. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func Login(ctx context.Context, conn *sql.DB, login, password string) (User, error) {
	u, err := GetUserByLogin(ctx, conn, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	ok, err := credentials.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return User{}, fmt.Errorf("failed to verify password for %q: %w", u.Username, err)
	}
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// SetPin stores the digest of pin as the user's unlock PIN.
func SetPin(ctx context.Context, conn *sql.DB, id uuid.UUID, pin string) error {
	if err := validate.Var(pin, "required,min=4,max=12"); err != nil {
		return ErrInvalidPin
	}
	return SetPinHash(ctx, conn, id, credentials.HashPin(pin))
}

// ClearPin removes the user's unlock PIN.
func ClearPin(ctx context.Context, conn *sql.DB, id uuid.UUID) error {
	return SetPinHash(ctx, conn, id, "")
}

// CheckPin reports whether pin unlocks u. A user without a PIN is always
// unlocked.
func CheckPin(u User, pin string) bool {
	if !u.HasPin() {
		return true
	}
	return credentials.VerifyPin(pin, u.PinHash)
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed '%s'", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(msgs, ", ")
}
