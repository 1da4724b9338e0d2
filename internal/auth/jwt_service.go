// Package auth 运维接口的认证：JWT 访问令牌和 API Key
package auth

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength JWT 密钥最短长度
const MinSecretLength = 32

// TokenClaims JWT 令牌声明
type TokenClaims struct {
	Subject string
	ID      string
	Type    string
	Exp     int64
	Iat     int64
}

// TokenConfig 保存 JWT 配置
type TokenConfig struct {
	Secret    []byte
	ExpiresIn time.Duration
}

// JWTService JWT Token 服务
type JWTService struct {
	config TokenConfig
	mutex  sync.RWMutex
	now    func() time.Time
}

// NewJWTService 创建新的 JWT 服务
func NewJWTService(secret string, expiresIn time.Duration) (*JWTService, error) {
	svc := &JWTService{now: time.Now}
	if err := svc.applyConfig(secret, expiresIn); err != nil {
		return nil, err
	}
	return svc, nil
}

// applyConfig 应用 JWT 配置
func (s *JWTService) applyConfig(secret string, expiresIn time.Duration) error {
	if len(secret) < MinSecretLength {
		return fmt.Errorf("JWT secret must be at least %d characters long, got %d", MinSecretLength, len(secret))
	}
	if expiresIn <= 0 {
		return fmt.Errorf("invalid JWT access token TTL: %v", expiresIn)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.config = TokenConfig{
		Secret:    []byte(secret),
		ExpiresIn: expiresIn,
	}

	log.Printf("[JWT] Config loaded - Access: %v\n", expiresIn)
	return nil
}

// GetConfig 获取当前 JWT 配置（只读）
func (s *JWTService) GetConfig() TokenConfig {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return TokenConfig{
		Secret:    append([]byte{}, s.config.Secret...),
		ExpiresIn: s.config.ExpiresIn,
	}
}

// GenerateAccessToken 为 subject 签发访问令牌，ttl<=0 时使用配置的有效期
func (s *JWTService) GenerateAccessToken(subject string, ttl time.Duration) (string, time.Time, error) {
	config := s.GetConfig()
	if len(config.Secret) == 0 {
		return "", time.Time{}, errors.New("JWT secret is not initialized")
	}
	if ttl <= 0 {
		ttl = config.ExpiresIn
	}

	now := s.now()
	expiry := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  subject,
		"jti":  uuid.NewString(),
		"type": "access",
		"exp":  expiry.Unix(),
		"iat":  now.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, expiry, nil
}

// ParseToken 解析和验证 JWT 令牌
func (s *JWTService) ParseToken(tokenString string) (jwt.MapClaims, error) {
	config := s.GetConfig()
	if len(config.Secret) == 0 {
		return nil, errors.New("JWT secret is not initialized")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return config.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// ExtractClaims 解析令牌并要求为访问令牌
func (s *JWTService) ExtractClaims(tokenString string) (*TokenClaims, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	tokenType, _ := claims["type"].(string)
	if tokenType != "access" {
		return nil, errors.New("not an access token")
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, errors.New("subject not found in token claims")
	}
	id, _ := claims["jti"].(string)
	expFloat, _ := claims["exp"].(float64)
	iatFloat, _ := claims["iat"].(float64)

	return &TokenClaims{
		Subject: subject,
		ID:      id,
		Type:    tokenType,
		Exp:     int64(expFloat),
		Iat:     int64(iatFloat),
	}, nil
}
