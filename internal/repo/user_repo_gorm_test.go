package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gin-gorm-users/internal/core/database/dbtest"
	"gin-gorm-users/internal/domain"
)

func newUser(email string) *domain.User {
	return &domain.User{Email: email, Password: "hashed", Firstname: "John", Lastname: "Doe"}
}

func TestUserRepo_Create(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{name: "success", user: newUser("a@b.com")},
		{name: "duplicate email", user: newUser("a@b.com"), wantErr: true},
		{name: "other email", user: newUser("c@d.com")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, tt.user.ID)
		})
	}
}

func TestUserRepo_CreateRunsHook(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()

	u := newUser("hook@b.com")
	require.NoError(t, r.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.UUID)
	assert.False(t, u.CreatedAt.IsZero())

	preset := newUser("preset@b.com")
	preset.UUID = uuid.MustParse("0b8f5a2e-2f49-4d8e-9a34-1c6e6f1d2a10")
	preset.CreatedAt = time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, r.Create(ctx, preset))

	got, err := r.FindByID(ctx, preset.ID)
	require.NoError(t, err)
	assert.Equal(t, preset.UUID, got.UUID)
	assert.True(t, preset.CreatedAt.Equal(got.CreatedAt))
}

func TestUserRepo_FindByID(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	u := newUser("find@b.com")
	u.StoredRoles = []string{"ROLE_ADMIN"}
	require.NoError(t, r.Create(ctx, u))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "find@b.com", got.Email)
	assert.Equal(t, []string{"ROLE_ADMIN"}, got.StoredRoles)
	assert.Equal(t, u.UUID, got.UUID)

	missing, err := r.FindByID(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_FindByEmail(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, newUser("find@b.com")))

	tests := []struct {
		name  string
		email string
		found bool
	}{
		{name: "found", email: "find@b.com", found: true},
		{name: "not found", email: "nobody@b.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.FindByEmail(ctx, tt.email)
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.email, got.Email)
		})
	}
}

func TestUserRepo_FindAll(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()

	all, err := r.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)

	require.NoError(t, r.Create(ctx, newUser("one@b.com")))
	require.NoError(t, r.Create(ctx, newUser("two@b.com")))

	all, err = r.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "one@b.com", all[0].Email)
	assert.Equal(t, "two@b.com", all[1].Email)
}

func TestUserRepo_UpdateKeepsIdentity(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	u := newUser("old@b.com")
	require.NoError(t, r.Create(ctx, u))
	before, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)

	u.Email = "new@b.com"
	u.Firstname = "Jane"
	u.UUID = uuid.New()
	u.CreatedAt = time.Now().Add(48 * time.Hour)
	require.NoError(t, r.Update(ctx, u))

	got, err := r.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", got.Email)
	assert.Equal(t, "Jane", got.Firstname)
	assert.Equal(t, "Doe", got.Lastname)
	assert.Equal(t, before.UUID, got.UUID)
	assert.True(t, before.CreatedAt.Equal(got.CreatedAt))
}

func TestUserRepo_UpdateDuplicateEmail(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	require.NoError(t, r.Create(ctx, newUser("taken@b.com")))
	u := newUser("mine@b.com")
	require.NoError(t, r.Create(ctx, u))

	u.Email = "taken@b.com"
	assert.Error(t, r.Update(ctx, u))
}

func TestUserRepo_UpdateMissingRow(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	u := newUser("gone@b.com")
	require.NoError(t, r.Create(ctx, u))
	require.NoError(t, r.Delete(ctx, u))

	u.Firstname = "Jane"
	assert.ErrorIs(t, r.Update(ctx, u), domain.ErrUserNotFound)
}

func TestUserRepo_UpdateUnchangedRow(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	u := newUser("same@b.com")
	require.NoError(t, r.Create(ctx, u))

	assert.NoError(t, r.Update(ctx, u))
}

func TestUserRepo_Delete(t *testing.T) {
	r := NewUserRepo(dbtest.Open(t))
	ctx := context.Background()
	u := newUser("gone@b.com")
	require.NoError(t, r.Create(ctx, u))

	require.NoError(t, r.Delete(ctx, u))

	got, err := r.FindByID(ctx, u.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.ErrorIs(t, r.Delete(ctx, u), domain.ErrUserNotFound)
}

func newMockRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return NewUserRepo(db), mock
}

func TestUserRepo_StoreFailuresPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	ctx := context.Background()

	t.Run("find by id", func(t *testing.T) {
		r, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT .* FROM `users`").WillReturnError(boom)

		got, err := r.FindByID(ctx, 1)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("find by email", func(t *testing.T) {
		r, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT .* FROM `users` WHERE email = ").WillReturnError(boom)

		_, err := r.FindByEmail(ctx, "a@b.com")
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("find all", func(t *testing.T) {
		r, mock := newMockRepo(t)
		mock.ExpectQuery("SELECT .* FROM `users` ORDER BY id asc").WillReturnError(boom)

		all, err := r.FindAll(ctx)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, all)
	})

	t.Run("update", func(t *testing.T) {
		r, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE `users`").WillReturnError(boom)

		assert.ErrorIs(t, r.Update(ctx, &domain.User{ID: 3, Email: "a@b.com"}), boom)
	})

	t.Run("delete", func(t *testing.T) {
		r, mock := newMockRepo(t)
		mock.ExpectExec("DELETE FROM `users`").WillReturnError(boom)

		assert.ErrorIs(t, r.Delete(ctx, &domain.User{ID: 3}), boom)
	})
}

func TestUserRepo_UpdateZeroRowsOnMySQL(t *testing.T) {
	ctx := context.Background()

	t.Run("row unchanged", func(t *testing.T) {
		r, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE `users`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

		assert.NoError(t, r.Update(ctx, &domain.User{ID: 3, Email: "a@b.com"}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row gone", func(t *testing.T) {
		r, mock := newMockRepo(t)
		mock.ExpectExec("UPDATE `users`").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users`").
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

		assert.ErrorIs(t, r.Update(ctx, &domain.User{ID: 3, Email: "a@b.com"}), domain.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
