package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Inmylir/realtime-chat/internal/config"
	"github.com/Inmylir/realtime-chat/internal/db"
	"github.com/Inmylir/realtime-chat/internal/media"
	"github.com/Inmylir/realtime-chat/internal/models"
	"github.com/Inmylir/realtime-chat/internal/ws"

	"github.com/gin-gonic/gin"
)

func testConfig() config.Config {
	return config.Config{
		Port:           "0",
		DatabaseDSN:    "host=localhost user=postgres password=postgres dbname=chat port=5432 sslmode=disable TimeZone=UTC",
		JWTSecret:      "test-secret",
		Env:            "dev",
		SessionTTLDays: 7,
	}
}

// testRouter 构造一个不碰数据库的路由。传 nil db 是安全的：
// 下面测的路径都在访问存储之前就返回了。
func testRouter(t *testing.T, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := media.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}
	return SetupRouter(cfg, nil, ws.NewHub(&nopStore{}), store)
}

type nopStore struct{}

func (*nopStore) Save(*models.Message) error { return nil }

func TestHealthz(t *testing.T) {
	engine := testRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRegister_DisabledByDefault(t *testing.T) {
	engine := testRouter(t, testConfig()) // AllowRegister 未设置

	body := bytes.NewBufferString(`{"username":"alice","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body)
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	cfg := testConfig()
	cfg.AllowRegister = true
	engine := testRouter(t, cfg)

	tests := []struct {
		name string
		body string
	}{
		{"username too short", `{"username":"ab","password":"password123"}`},
		{"password too short", `{"username":"alice","password":"1234567"}`},
		{"bad username chars", `{"username":"al ice","password":"password123"}`},
		{"not json", `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body)
			}
		})
	}
}

func TestAuthedRoutes_RejectMissingToken(t *testing.T) {
	engine := testRouter(t, testConfig())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/history?room=global"},
		{http.MethodPost, "/api/media/init"},
		{http.MethodGet, "/media/global/1/x.png"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			req := httptest.NewRequest(p.method, p.path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d: %s", w.Code, w.Body)
			}
		})
	}
}

// TestFullFlow 走完整的注册-登录-历史链路，需要本地 Postgres，连不上就跳过。
func TestFullFlow(t *testing.T) {
	cfg := testConfig()
	cfg.AllowRegister = true

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		t.Skipf("skip: db not available: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Skipf("skip: migrate failed: %v", err)
	}

	gin.SetMode(gin.TestMode)
	store, err := media.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}
	engine := SetupRouter(cfg, gdb, ws.NewHub(ws.NewGormMessageStore(gdb)), store)

	username := fmt.Sprintf("alice%d", time.Now().UnixNano()%1_000_000_000)
	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	if w := post("/api/register", `{"username":"`+username+`","password":"password123"}`); w.Code != http.StatusOK {
		t.Fatalf("register: %d %s", w.Code, w.Body)
	}
	if w := post("/api/register", `{"username":"`+username+`","password":"password123"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: %d %s", w.Code, w.Body)
	}

	// 错误口令与不存在的用户必须得到同样的响应
	wrongPw := post("/api/login", `{"username":"`+username+`","password":"wrongpassword"}`)
	noUser := post("/api/login", `{"username":"nosuchuser999","password":"password123"}`)
	if wrongPw.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("login failures: %d / %d, want 401 / 401", wrongPw.Code, noUser.Code)
	}
	if wrongPw.Body.String() != noUser.Body.String() {
		t.Fatalf("login failure bodies differ: %s vs %s", wrongPw.Body, noUser.Body)
	}

	w := post("/api/login", `{"username":"`+username+`","password":"password123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body)
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil || loginResp.Token == "" {
		t.Fatalf("login response: %s", w.Body)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history?room=global&limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	hw := httptest.NewRecorder()
	engine.ServeHTTP(hw, req)
	if hw.Code != http.StatusOK {
		t.Fatalf("history: %d %s", hw.Code, hw.Body)
	}
}
