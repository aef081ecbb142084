package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 10

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s-%s", prefix, string(result))
}

// GenerateAccountNumber generates an account number of the form ACC + 10
// uppercase hex characters.
func GenerateAccountNumber() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ACC" + strings.ToUpper(raw[:10])
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidateAccountNumber validates the account number format
func ValidateAccountNumber(accountNumber string) bool {
	return len(accountNumber) == 13 && strings.HasPrefix(accountNumber, "ACC")
}

// ValidateUserID validates the user ID format
func ValidateUserID(userID string) bool {
	return strings.HasPrefix(userID, "usr-")
}

// ValidateTransferID validates the transfer ID format
func ValidateTransferID(transferID string) bool {
	return strings.HasPrefix(transferID, "trf-")
}
