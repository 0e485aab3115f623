package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/studycycle/internal/db"
	"github.com/studycycle/internal/service"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// newTestEngine 构造带会话的引擎，as 非 0 时跳过认证直接注入用户
func newTestEngine(api *API, as uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(api.LocaleMiddleware())
	if as != 0 {
		r.Use(func(c *gin.Context) {
			c.Set(userIDContextKey, as)
			c.Next()
		})
	} else {
		r.Use(api.AuthRequired())
	}
	r.GET("/me", api.Me)
	r.POST("/subjects", api.CreateSubject)
	r.POST("/cycles", api.CreateCycle)
	r.PATCH("/assignments/:id", api.AdjustAssignmentHours)
	return r
}

func performJSON(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeNotice(t *testing.T, rr *httptest.ResponseRecorder) notice {
	t.Helper()
	var payload struct {
		Notice notice `json:"notice"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return payload.Notice
}

func TestNoticeTemplateRender(t *testing.T) {
	pt := noticeSubjectAdded.render("pt", "Física")
	if pt.Title != "Matéria adicionada!" || pt.Description != "Física foi adicionada com sucesso." || pt.Variant != noticeSuccess {
		t.Fatalf("unexpected portuguese notice %+v", pt)
	}

	en := noticeSubjectAdded.render("en", "Physics")
	if en.Title != "Subject added!" || en.Description != "Physics was added successfully." {
		t.Fatalf("unexpected english notice %+v", en)
	}

	failed := noticeCycleCreateFailed.render("")
	if failed.Variant != noticeDestructive || failed.Title != "Erro" || failed.Description != "Não foi possível criar o ciclo." {
		t.Fatalf("unexpected failure notice %+v", failed)
	}
}

func TestResolveLanguage(t *testing.T) {
	api := NewAPI(setupHandlerTestDB(t), Options{})
	r := newTestEngine(api, 1)

	cases := []struct {
		name    string
		path    string
		headers map[string]string
		want    string
	}{
		{name: "default portuguese", path: "/subjects", want: "Erro"},
		{name: "accept language", path: "/subjects", headers: map[string]string{"Accept-Language": "en-GB,en;q=0.8"}, want: "Error"},
		{name: "query override", path: "/subjects?lang=pt", headers: map[string]string{"Accept-Language": "en"}, want: "Erro"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := performJSON(r, http.MethodPost, tc.path, "{", tc.headers)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			if got := decodeNotice(t, rr).Title; got != tc.want {
				t.Fatalf("expected title %q, got %q", tc.want, got)
			}
			if !strings.Contains(strings.Join(rr.Header().Values("Vary"), ","), "Accept-Language") {
				t.Fatalf("expected Vary to include Accept-Language, got %v", rr.Header().Values("Vary"))
			}
		})
	}
}

func TestDefaultLanguageOption(t *testing.T) {
	api := NewAPI(setupHandlerTestDB(t), Options{DefaultLanguage: "en"})
	r := newTestEngine(api, 1)

	rr := performJSON(r, http.MethodPost, "/cycles", `{"weekly_hours": 500}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if got := decodeNotice(t, rr).Description; got != "Enter a value between 1 and 168 hours" {
		t.Fatalf("unexpected notice %q", got)
	}
	if rr.Header().Get("Content-Language") != "en-US" {
		t.Fatalf("unexpected Content-Language %q", rr.Header().Get("Content-Language"))
	}
}

func TestCreateCycleErrorMapping(t *testing.T) {
	gdb := setupHandlerTestDB(t)
	api := NewAPI(gdb, Options{})
	r := newTestEngine(api, 5)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantNotice string
	}{
		{name: "missing hours", body: `{}`, wantStatus: http.StatusBadRequest, wantNotice: "Digite um valor entre 1 e 168 horas"},
		{name: "zero hours", body: `{"weekly_hours": 0}`, wantStatus: http.StatusBadRequest, wantNotice: "Digite um valor entre 1 e 168 horas"},
		{name: "no subjects", body: `{"weekly_hours": 10}`, wantStatus: http.StatusConflict, wantNotice: "Adicione pelo menos uma matéria antes de criar um ciclo."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := performJSON(r, http.MethodPost, "/cycles", tt.body, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if got := decodeNotice(t, rr).Description; got != tt.wantNotice {
				t.Fatalf("expected notice %q, got %q", tt.wantNotice, got)
			}
		})
	}

	var count int64
	gdb.Model(&db.Cycle{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no cycles to be written, got %d", count)
	}
}

func TestCreateSubjectValidation(t *testing.T) {
	api := NewAPI(setupHandlerTestDB(t), Options{})
	r := newTestEngine(api, 5)

	rr := performJSON(r, http.MethodPost, "/subjects", `{"name": "  "}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", rr.Code)
	}
	if got := decodeNotice(t, rr).Description; got != "Não foi possível adicionar a matéria." {
		t.Fatalf("unexpected notice %q", got)
	}

	rr = performJSON(r, http.MethodPost, "/subjects", `{"name": "Química", "difficulty": "impossível"}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown difficulty, got %d", rr.Code)
	}

	rr = performJSON(r, http.MethodPost, "/subjects", `{"name": "Química", "notes": "**ácidos**"}`, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Subject map[string]any `json:"subject"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if payload.Subject["difficulty"] != "medium" || payload.Subject["weight_label"] != "Média" {
		t.Fatalf("expected medium defaults, got %v", payload.Subject)
	}
	if html, _ := payload.Subject["notes_html"].(string); !strings.Contains(html, "<strong>ácidos</strong>") {
		t.Fatalf("expected rendered notes, got %q", html)
	}
}

func TestAdjustAssignmentHoursRejectsBadInput(t *testing.T) {
	api := NewAPI(setupHandlerTestDB(t), Options{})
	r := newTestEngine(api, 5)

	rr := performJSON(r, http.MethodPatch, "/assignments/abc", `{"delta": 1}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rr.Code)
	}
	if got := decodeNotice(t, rr).Description; got != "Não foi possível atualizar as horas." {
		t.Fatalf("unexpected notice %q", got)
	}

	rr = performJSON(r, http.MethodPatch, "/assignments/1", `{"delta": "muito"}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric delta, got %d", rr.Code)
	}

	rr = performJSON(r, http.MethodPatch, "/assignments/1", `{"delta": 1}`, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown assignment, got %d", rr.Code)
	}
}

func TestAuthRequiredAcceptsBearerToken(t *testing.T) {
	gdb := setupHandlerTestDB(t)
	tokens := service.NewTokenManager("handler-secret", time.Hour)
	api := NewAPI(gdb, Options{Tokens: tokens})
	r := newTestEngine(api, 0)

	user, err := service.NewAuthService(gdb).Register(t.Context(), "carla", "segredo123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	token, _, err := tokens.Issue(user.ID)
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	rr := performJSON(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer " + token})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"username":"carla"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}

	rr = performJSON(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Basic " + token})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for non-bearer scheme, got %d", rr.Code)
	}

	other := service.NewTokenManager("other-secret", time.Hour)
	forged, _, _ := other.Issue(user.ID)
	rr = performJSON(r, http.MethodGet, "/me", "", map[string]string{"Authorization": "Bearer " + forged})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for token signed with another secret, got %d", rr.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(nil))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	rr := performJSON(r, http.MethodGet, "/", "", map[string]string{requestIDHeader: "abc-123"})
	if rr.Header().Get(requestIDHeader) != "abc-123" || rr.Body.String() != "abc-123" {
		t.Fatalf("expected incoming request id to be kept, got %q", rr.Header().Get(requestIDHeader))
	}

	rr = performJSON(r, http.MethodGet, "/", "", map[string]string{requestIDHeader: strings.Repeat("x", requestIDMaxLen+1)})
	generated := rr.Header().Get(requestIDHeader)
	if len(generated) != 36 {
		t.Fatalf("expected generated uuid, got %q", generated)
	}
}
