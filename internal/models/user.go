package models

import (
	"fmt"
	"strings"
	"time"
)

// User is an account registered with the reference collaborator.
type User struct {
	id           string
	sequence     int
	email        string
	name         string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewUser creates a [User] with the creation and update timestamps set to now.
func NewUser(sequence int, email, name, passwordHash string) *User {
	now := time.Now()
	return &User{
		sequence:     sequence,
		email:        strings.ToLower(strings.TrimSpace(email)),
		name:         name,
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (u *User) ID() string            { return u.id }
func (u *User) Sequence() int         { return u.sequence }
func (u *User) Email() string         { return u.email }
func (u *User) Name() string          { return u.name }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetID(id string)             { u.id = id }
func (u *User) SetSequence(seq int)         { u.sequence = seq }
func (u *User) SetName(name string)         { u.name = name }
func (u *User) SetCreatedAt(t time.Time)    { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)    { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time)   { u.deletedAt = t }
func (u *User) SetPasswordHash(hash string) { u.passwordHash = hash }

// Validate checks that the account has an id, an email and a password hash.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user id is required")
	}
	if u.email == "" || !strings.Contains(u.email, "@") {
		return fmt.Errorf("a valid email is required")
	}
	if u.passwordHash == "" {
		return fmt.Errorf("password hash is required")
	}
	return nil
}
