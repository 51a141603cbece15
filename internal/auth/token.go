package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("无效的令牌")

// AccessClaims access token的Payload，不能将密码放在其中，Payload不加密
type AccessClaims struct {
	UserID   uint64 `json:"uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	jwt.RegisteredClaims
}

// TokenPair 登录和刷新时返回给客户端的一对令牌
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenManager 签发和校验access/refresh两种JWT，两者用不同的密钥
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// WithNowFunc 测试里替换时间源
func (m *TokenManager) WithNowFunc(now func() time.Time) {
	m.now = now
}

func (m *TokenManager) IssueAccess(userID uint64, username, email, fullname string) (string, error) {
	now := m.now()
	claims := AccessClaims{
		UserID:   userID,
		Username: username,
		Email:    email,
		Fullname: fullname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	// token加上Header，算法信息HS256，对称加密
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.accessSecret)
}

// IssueRefresh refresh token只带用户ID和一个随机jti，保证每次签发的字符串都不一样
func (m *TokenManager) IssueRefresh(userID uint64) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.refreshSecret)
}

func (m *TokenManager) ParseAccess(raw string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, m.keyFunc(m.accessSecret), m.parserOptions()...); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

// ParseRefresh 校验签名和过期时间，返回用户ID
func (m *TokenManager) ParseRefresh(raw string) (uint64, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, m.keyFunc(m.refreshSecret), m.parserOptions()...); err != nil {
		return 0, errors.Join(ErrInvalidToken, err)
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidToken, err)
	}
	return userID, nil
}

func (m *TokenManager) keyFunc(secret []byte) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		// 确保签名方法是对称加密族
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("非预期的签名方法")
		}
		return secret, nil
	}
}

func (m *TokenManager) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
}

// HashRefresh 库里只存refresh token的SHA-256摘要
func HashRefresh(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
