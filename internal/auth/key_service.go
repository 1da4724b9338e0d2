package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	cryptopackage "github.com/anoixa/comic-tracker/utils/crypto"
)

// ErrInvalidAPIKey API Key 不匹配
var ErrInvalidAPIKey = errors.New("invalid api key")

// KeyService 校验配置中以 Argon2id 哈希保存的 API Key
// 校验成功的 key 以 sha256 指纹缓存，避免每个请求都做 Argon2 计算
type KeyService struct {
	hash     string
	verified sync.Map
	group    singleflight.Group
}

// NewKeyService 创建 API Key 服务，hash 为空时拒绝所有 key
func NewKeyService(hash string) *KeyService {
	return &KeyService{hash: strings.TrimSpace(hash)}
}

// Enabled 是否配置了 API Key
func (s *KeyService) Enabled() bool {
	return s.hash != ""
}

// Validate 校验 API Key
func (s *KeyService) Validate(key string) error {
	if !s.Enabled() || key == "" {
		return ErrInvalidAPIKey
	}

	sum := sha256.Sum256([]byte(key))
	fingerprint := hex.EncodeToString(sum[:])
	if _, ok := s.verified.Load(fingerprint); ok {
		return nil
	}

	v, err, _ := s.group.Do(fingerprint, func() (interface{}, error) {
		return cryptopackage.VerifyAPIKey(key, s.hash)
	})
	if err != nil {
		return err
	}
	if ok, _ := v.(bool); !ok {
		return ErrInvalidAPIKey
	}

	s.verified.Store(fingerprint, struct{}{})
	return nil
}
