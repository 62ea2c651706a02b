package util

import "golang.org/x/crypto/bcrypt"

// GenerateEncrypt hashes password with bcrypt at the given cost. A cost
// outside bcrypt's range falls back to bcrypt.DefaultCost.
func GenerateEncrypt(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	encrypted, err := bcrypt.GenerateFromPassword([]byte(password), cost)

	if err != nil {
		return "", err
	}

	return string(encrypted), nil
}

func ComparePassword(password, encrypted string) error {
	return bcrypt.CompareHashAndPassword([]byte(encrypted), []byte(password))
}
