package service

import (
	"gin-gorm-users/internal/domain"
	"gin-gorm-users/pkg/utils"
)

// PasswordHasher turns a plaintext password into the credential stored on u.
// The user is passed so schemes that key the hash on identity can do so.
type PasswordHasher interface {
	Hash(u *domain.User, plain string) (string, error)
}

// BcryptHasher salts every hash randomly and ignores the user.
type BcryptHasher struct{ Cost int }

func (h BcryptHasher) Hash(_ *domain.User, plain string) (string, error) {
	return utils.HashPassword(plain, h.Cost)
}
