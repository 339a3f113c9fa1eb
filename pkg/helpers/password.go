package helpers

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes the salted password using bcrypt.
// The salt is an application-wide pepper (SALT) appended before hashing.
func HashPassword(plain, salt string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain+salt), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash, plain, salt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain+salt)) == nil
}
