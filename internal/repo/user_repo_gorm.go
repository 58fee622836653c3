package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gin-gorm-users/internal/domain"
)

// updatable lists the columns a user may change after creation.
var updatable = []string{"email", "roles", "password", "firstname", "lastname"}

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindAll(ctx context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0)
	if err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update writes the mutable columns only; uuid and created_at are never touched.
// It returns domain.ErrUserNotFound when the row is gone.
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Model(u).Select(updatable).Updates(u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// MySQL reports 0 rows for an update that changes nothing, so look again.
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", u.ID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, u.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
