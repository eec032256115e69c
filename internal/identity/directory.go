// Package identity verifies dashboard credentials against the users table.
package identity

import (
	"context"
	"fmt"

	"github.com/diewo77/acme-dashboard/internal/forms"
	"github.com/diewo77/acme-dashboard/internal/models"
	"github.com/juju/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Kind categorizes an expected authentication failure.
type Kind string

const (
	// KindInvalidCredentials covers unknown emails and wrong passwords alike.
	KindInvalidCredentials Kind = "invalid_credentials"
	// KindMissingCredentials is a login attempt with an empty email or password.
	KindMissingCredentials Kind = "missing_credentials"
	// KindCorruptRecord is a stored password that is not a usable hash.
	KindCorruptRecord Kind = "corrupt_record"
)

// Error is a categorized authentication failure. Anything else returned by
// Directory.Verify is an unexpected fault.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("authentication failed: %s", e.Kind)
	}
	return fmt.Sprintf("authentication failed: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Directory looks users up by email and checks bcrypt hashes.
type Directory struct {
	db *gorm.DB
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// Verify returns the user matching the login form.
func (d *Directory) Verify(ctx context.Context, in forms.Login) (*models.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, &Error{Kind: KindMissingCredentials}
	}

	var user models.User
	err := d.db.WithContext(ctx).Where("email = ?", in.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindInvalidCredentials}
	}
	if err != nil {
		return nil, errors.Annotatef(err, "looking up user %q", in.Email)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password))
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return nil, &Error{Kind: KindInvalidCredentials}
	default:
		return nil, &Error{Kind: KindCorruptRecord, Err: err}
	}
}

// Exists reports whether the user id still exists. It backs the session
// verifier.
func (d *Directory) Exists(ctx context.Context, id string) bool {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
