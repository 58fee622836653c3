package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_FillsIdentityAndTimestamp(t *testing.T) {
	u := NewUser("a@b.com", "John", "Doe")

	assert.NotEqual(t, uuid.Nil, u.UUID)
	assert.False(t, u.CreatedAt.IsZero())
	assert.Equal(t, "a@b.com", u.Email)
	assert.Zero(t, u.ID)
}

func TestPrepareForInsert_KeepsPresetValues(t *testing.T) {
	id := uuid.New()
	at := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &User{UUID: id, CreatedAt: at}

	PrepareForInsert(u, time.Now())

	assert.Equal(t, id, u.UUID)
	assert.Equal(t, at, u.CreatedAt)
}

func TestPrepareForInsert_FillsMissing(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	u := &User{}

	PrepareForInsert(u, now)

	assert.NotEqual(t, uuid.Nil, u.UUID)
	assert.Equal(t, now, u.CreatedAt)
}

func TestUser_Roles(t *testing.T) {
	tests := []struct {
		name   string
		stored []string
		want   []string
	}{
		{name: "empty", stored: nil, want: []string{DefaultRole}},
		{name: "default already stored", stored: []string{DefaultRole}, want: []string{DefaultRole}},
		{name: "extra role", stored: []string{"ROLE_ADMIN"}, want: []string{"ROLE_ADMIN", DefaultRole}},
		{name: "duplicates", stored: []string{"ROLE_ADMIN", "ROLE_ADMIN", DefaultRole}, want: []string{"ROLE_ADMIN", DefaultRole}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{StoredRoles: tt.stored}
			assert.Equal(t, tt.want, u.Roles())
		})
	}
}

func TestUser_RolesDoesNotTouchStoredSlice(t *testing.T) {
	stored := make([]string, 1, 4)
	stored[0] = "ROLE_ADMIN"
	u := &User{StoredRoles: stored}

	_ = u.Roles()

	assert.Equal(t, []string{"ROLE_ADMIN"}, u.StoredRoles)
	assert.Equal(t, "", stored[:2][1])
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "x@y.org", Identifier(&User{Email: "x@y.org"}))
}

func TestValidate(t *testing.T) {
	valid := func() *User { return NewUser("john.doe@example.com", "John", "Doe") }

	tests := []struct {
		name   string
		mutate func(u *User)
		fields []string
	}{
		{name: "valid", mutate: func(*User) {}},
		{name: "blank email", mutate: func(u *User) { u.Email = "" }, fields: []string{"email"}},
		{name: "email without domain", mutate: func(u *User) { u.Email = "john@" }, fields: []string{"email"}},
		{name: "email without tld", mutate: func(u *User) { u.Email = "john@localhost" }, fields: []string{"email"}},
		{name: "email ip literal", mutate: func(u *User) { u.Email = "john@[10.0.0.1]" }},
		{name: "email backslash in local part", mutate: func(u *User) { u.Email = `a\b@c.com` }},
		{name: "email comma in local part", mutate: func(u *User) { u.Email = "a,b@c.com" }, fields: []string{"email"}},
		{name: "email too long", mutate: func(u *User) { u.Email = strings.Repeat("a", 175) + "@b.com" }, fields: []string{"email"}},
		{name: "firstname digits", mutate: func(u *User) { u.Firstname = "J0hn" }, fields: []string{"firstname"}},
		{name: "firstname too short", mutate: func(u *User) { u.Firstname = "J" }, fields: []string{"firstname"}},
		{name: "lastname too long", mutate: func(u *User) { u.Lastname = strings.Repeat("x", 51) }, fields: []string{"lastname"}},
		{name: "lastname blank", mutate: func(u *User) { u.Lastname = "" }, fields: []string{"lastname"}},
		{
			name:   "several",
			mutate: func(u *User) { u.Email = "nope"; u.Firstname = "" },
			fields: []string{"email", "firstname"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := valid()
			tt.mutate(u)
			err := Validate(u)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Len(t, ve.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, ve.Fields, f)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"lastname": "must not be blank", "email": "is not a valid email address"}}
	assert.Equal(t, "validation failed: email: is not a valid email address; lastname: must not be blank", err.Error())
}
