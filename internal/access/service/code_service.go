package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/allisson/roleguard/internal/errors"
)

const codeSizeBytes = 24

// codeService implements CodeService using crypto/rand and SHA-256.
type codeService struct{}

// GenerateCode creates a URL-safe random code and its hash.
func (c *codeService) GenerateCode() (string, string, error) {
	randomBytes := make([]byte, codeSizeBytes)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate authorization code")
	}

	plainCode := base64.RawURLEncoding.EncodeToString(randomBytes)
	return plainCode, c.HashCode(plainCode), nil
}

// HashCode returns the hex-encoded SHA-256 of the code.
func (c *codeService) HashCode(plainCode string) string {
	hash := sha256.Sum256([]byte(plainCode))
	return hex.EncodeToString(hash[:])
}

// NewCodeService creates a CodeService.
func NewCodeService() CodeService {
	return &codeService{}
}
