package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"college-schedule/backend/config"
)

var (
	ErrTokenExpired = errors.New("token 已过期")
	ErrTokenInvalid = errors.New("token 无效")
)

const issuer = "college-schedule-gateway"

// Claims 网关会话 JWT 声明
// 仅携带会话索引与权限信息，后端 Token 保存在服务端会话中，不下发浏览器
type Claims struct {
	SessionID    string `json:"sid"`
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	DepartmentID string `json:"department_id,omitempty"`
	jwtv5.RegisteredClaims
}

// Manager JWT 管理器
type Manager struct {
	secret   []byte
	tokenTTL time.Duration
}

// NewManager 创建 JWT 管理器
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL,
	}
}

// TTL 会话 Token 有效期
func (m *Manager) TTL() time.Duration {
	return m.tokenTTL
}

// GenerateSessionToken 为网关会话签发 Token
// expiresAt 为零值时使用默认有效期；调用方通常传入与后端 Token 对齐的过期时间
func (m *Manager) GenerateSessionToken(sessionID, userID, role, departmentID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	if expiresAt.IsZero() {
		expiresAt = now.Add(m.tokenTTL)
	}
	claims := Claims{
		SessionID:    sessionID,
		UserID:       userID,
		Role:         role,
		DepartmentID: departmentID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(expiresAt),
			Issuer:    issuer,
		},
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken 解析并验证 Token
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, jwtv5.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// UpstreamExpiry 读取后端签发 Token 的 exp 声明
// 网关不持有后端密钥，只读取声明用于对齐会话过期时间；非 JWT 或无 exp 时返回 false
func UpstreamExpiry(tokenString string) (time.Time, bool) {
	parser := jwtv5.NewParser()
	claims := jwtv5.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
