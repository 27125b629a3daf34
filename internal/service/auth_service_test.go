package service

import (
	"context"
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"college-schedule/backend/config"
	"college-schedule/backend/internal/dto"
	"college-schedule/backend/internal/model"
	"college-schedule/backend/internal/repository"
	apperrors "college-schedule/backend/pkg/errors"
	"college-schedule/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService() (*authService, *mockBackend, *mockSessionRepo, *mockStore) {
	backend := newMockBackend()
	sessions := newMockSessionRepo()
	store := newMockStore()
	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret: "test-secret-key-for-unit-tests",
		TokenTTL:  12 * time.Hour,
	})
	repo := &repository.Repository{Session: sessions}
	svc := NewAuthService(backend, repo, jwtMgr, store, zap.NewNop()).(*authService)
	return svc, backend, sessions, store
}

func addDean(b *mockBackend, token string) {
	b.addUser(&model.User{
		ID:           "1",
		Username:     "dean",
		FullName:     "عميد الكلية",
		Role:         model.RoleDean,
		DepartmentID: "",
	}, "secret-pass", token)
}

func backendToken(t *testing.T, exp time.Time) string {
	t.Helper()
	raw := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, jwtv5.MapClaims{"sub": "1", "exp": exp.Unix()})
	signed, err := raw.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("签发测试 Token 失败: %v", err)
	}
	return signed
}

// ── Login ──

func TestLogin_Success(t *testing.T) {
	svc, backend, sessions, _ := setupTestAuthService()
	addDean(backend, "opaque-backend-token")

	result, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("Login 应成功，但返回错误: %v", err)
	}
	if result.Token == "" {
		t.Error("Token 不应为空")
	}
	if result.User.Role != "dean" {
		t.Errorf("期望 Role=dean，实际=%s", result.User.Role)
	}
	if result.ExpiresIn != int((12 * time.Hour).Seconds()) {
		t.Errorf("期望 ExpiresIn=43200，实际=%d", result.ExpiresIn)
	}
	if len(sessions.sessions) != 1 {
		t.Fatalf("期望创建 1 个会话，实际 %d", len(sessions.sessions))
	}
	for _, s := range sessions.sessions {
		if s.UpstreamToken != "opaque-backend-token" {
			t.Errorf("后端 Token 应保存在会话中，实际 %q", s.UpstreamToken)
		}
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, backend, sessions, _ := setupTestAuthService()
	addDean(backend, "opaque-backend-token")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Error("登录失败不应创建会话")
	}
}

func TestLogin_EmptyBackendToken(t *testing.T) {
	svc, backend, _, _ := setupTestAuthService()
	addDean(backend, "")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestLogin_AlignsWithBackendExpiry(t *testing.T) {
	svc, backend, sessions, _ := setupTestAuthService()
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	addDean(backend, backendToken(t, exp))

	result, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if result.ExpiresIn > 3600 {
		t.Errorf("会话不应晚于后端 Token 过期，ExpiresIn=%d", result.ExpiresIn)
	}
	for _, s := range sessions.sessions {
		if !s.ExpiresAt.Equal(exp) {
			t.Errorf("期望会话过期时间 %v，实际 %v", exp, s.ExpiresAt)
		}
	}
}

func TestLogin_BackendTokenAlreadyExpired(t *testing.T) {
	svc, backend, _, _ := setupTestAuthService()
	addDean(backend, backendToken(t, time.Now().Add(-time.Minute)))

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})
	if !errors.Is(err, apperrors.ErrSessionExpired) {
		t.Errorf("期望 ErrSessionExpired，实际: %v", err)
	}
}

// ── Authenticate ──

func TestAuthenticate_Success(t *testing.T) {
	svc, backend, sessions, _ := setupTestAuthService()
	addDean(backend, "opaque-backend-token")
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})

	sess, claims, err := svc.Authenticate(context.Background(), login.Token)
	if err != nil {
		t.Fatalf("Authenticate 应成功: %v", err)
	}
	if sess.UpstreamToken != "opaque-backend-token" {
		t.Errorf("期望加载后端 Token，实际 %q", sess.UpstreamToken)
	}
	if claims.SessionID != sess.SessionID {
		t.Errorf("claims.sid 与会话不一致: %s vs %s", claims.SessionID, sess.SessionID)
	}
	if sessions.touched != 1 {
		t.Errorf("期望刷新活跃时间 1 次，实际 %d", sessions.touched)
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, _, err := svc.Authenticate(context.Background(), "garbage")
	if !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestAuthenticate_SessionGone(t *testing.T) {
	svc, backend, sessions, _ := setupTestAuthService()
	addDean(backend, "opaque-backend-token")
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})
	sessions.sessions = make(map[string]*model.Session)

	_, _, err := svc.Authenticate(context.Background(), login.Token)
	if !errors.Is(err, apperrors.ErrSessionExpired) {
		t.Errorf("期望 ErrSessionExpired，实际: %v", err)
	}
}

func TestAuthenticate_ExpiredSessionDropped(t *testing.T) {
	svc, backend, sessions, _ := setupTestAuthService()
	addDean(backend, "opaque-backend-token")
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})

	// 时钟前移到会话过期之后（JWT 本身由真实时钟校验，仍有效）
	svc.now = func() time.Time { return time.Now().Add(13 * time.Hour) }

	_, _, err := svc.Authenticate(context.Background(), login.Token)
	if !errors.Is(err, apperrors.ErrSessionExpired) {
		t.Errorf("期望 ErrSessionExpired，实际: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Error("过期会话应被删除")
	}
}

// ── Logout ──

func TestLogout_BlacklistsToken(t *testing.T) {
	svc, backend, sessions, store := setupTestAuthService()
	addDean(backend, "opaque-backend-token")
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})
	sess, claims, _ := svc.Authenticate(context.Background(), login.Token)

	if err := svc.Logout(context.Background(), sess, claims); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Error("登出后会话应被删除")
	}
	if ttl, ok := store.blacklist[claims.ID]; !ok || ttl <= 0 {
		t.Errorf("jti 应以正 TTL 进入黑名单，实际 ok=%v ttl=%v", ok, ttl)
	}

	_, _, err := svc.Authenticate(context.Background(), login.Token)
	if !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("期望 ErrTokenRevoked，实际: %v", err)
	}
}

// ── Me ──

func TestMe_SessionExpiredDropsSession(t *testing.T) {
	svc, backend, sessions, _ := setupTestAuthService()
	addDean(backend, "opaque-backend-token")
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})
	sess, _, _ := svc.Authenticate(context.Background(), login.Token)

	backend.meErr = httpErr(401, "")
	_, err := svc.Me(context.Background(), sess)
	if !errors.Is(err, apperrors.ErrSessionExpired) {
		t.Errorf("期望 ErrSessionExpired，实际: %v", err)
	}
	if len(sessions.sessions) != 0 {
		t.Error("后端 401 后应删除本地会话")
	}
}

func TestMe_Success(t *testing.T) {
	svc, backend, _, _ := setupTestAuthService()
	addDean(backend, "opaque-backend-token")
	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "dean", Password: "secret-pass"})
	sess, _, _ := svc.Authenticate(context.Background(), login.Token)

	user, err := svc.Me(context.Background(), sess)
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if user.FullName != "عميد الكلية" {
		t.Errorf("期望后端返回的姓名，实际 %q", user.FullName)
	}
}

// ── SweepExpired ──

func TestSweepExpired(t *testing.T) {
	svc, _, sessions, _ := setupTestAuthService()
	now := time.Now()
	sessions.sessions["a"] = &model.Session{SessionID: "a", ExpiresAt: now.Add(-time.Minute)}
	sessions.sessions["b"] = &model.Session{SessionID: "b", ExpiresAt: now.Add(time.Hour)}
	svc.now = func() time.Time { return now }

	if err := svc.SweepExpired(context.Background()); err != nil {
		t.Fatalf("SweepExpired 应成功: %v", err)
	}
	if _, ok := sessions.sessions["a"]; ok {
		t.Error("过期会话 a 应被清理")
	}
	if _, ok := sessions.sessions["b"]; !ok {
		t.Error("有效会话 b 不应被清理")
	}
}
