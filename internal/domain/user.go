package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultRole is granted to every user whether or not it is stored.
const DefaultRole = "ROLE_USER"

type User struct {
	ID          uint      `gorm:"primaryKey"`
	UUID        uuid.UUID `gorm:"column:uuid;type:varchar(36);uniqueIndex;not null"`
	Email       string    `gorm:"size:180;uniqueIndex;not null" validate:"required,max=180,email_shape"`
	StoredRoles []string  `gorm:"column:roles;type:text;serializer:json"`
	Password    string    `gorm:"size:255;not null"` // bcrypt hash, never plaintext
	Firstname   string    `gorm:"size:255;not null" validate:"required,alpha,min=2,max=50"`
	Lastname    string    `gorm:"size:255;not null" validate:"required,alpha,min=2,max=50"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// NewUser builds an unsaved record with identity and creation time already filled.
func NewUser(email, firstname, lastname string) *User {
	u := &User{Email: email, Firstname: firstname, Lastname: lastname}
	PrepareForInsert(u, time.Now())
	return u
}

// PrepareForInsert assigns UUID and CreatedAt when they are unset. Values already
// present are kept.
func PrepareForInsert(u *User, now time.Time) {
	if u.UUID == uuid.Nil {
		u.UUID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
}

// BeforeCreate runs right before the first INSERT of the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	PrepareForInsert(u, tx.NowFunc())
	return nil
}

// Roles returns the stored roles plus DefaultRole, without duplicates.
func (u *User) Roles() []string {
	out := make([]string, 0, len(u.StoredRoles)+1)
	seen := make(map[string]struct{}, len(u.StoredRoles)+1)
	add := func(r string) {
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	for _, r := range u.StoredRoles {
		add(r)
	}
	add(DefaultRole)
	return out
}

// Identifier is the value a user authenticates with.
func Identifier(u *User) string { return u.Email }

// UserRepository is the data-access boundary. Lookups return (nil, nil) when
// nothing matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, u *User) error
}
