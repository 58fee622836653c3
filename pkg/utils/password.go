package utils

import (
	"crypto/sha512"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores or rejects input past this many bytes.
const bcryptMaxInput = 72

// HashPassword bcrypt-hashes pw. A cost outside bcrypt's range falls back to
// bcrypt.DefaultCost. Passwords longer than 72 bytes are hashed through
// sha512+base64 first, so any length can be stored.
func HashPassword(pw string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword(bcryptInput(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), bcryptInput(pw)) == nil
}

func bcryptInput(pw string) []byte {
	if len(pw) <= bcryptMaxInput {
		return []byte(pw)
	}
	// bcrypt reads only 72 bytes of the 88-byte digest encoding
	sum := sha512.Sum512([]byte(pw))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))[:bcryptMaxInput]
}
