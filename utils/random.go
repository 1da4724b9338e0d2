package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// APIKeyPrefix 生成的 API Key 前缀，便于在日志和配置中识别
const APIKeyPrefix = "ct_"

// GenerateRandomToken Generate random token
func GenerateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateAPIKey 生成带前缀的 API Key
func GenerateAPIKey() (string, error) {
	token, err := GenerateRandomToken(32)
	if err != nil {
		return "", err
	}
	return APIKeyPrefix + token, nil
}
