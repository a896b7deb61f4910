package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/chanikul/edenclinic/internal/domain/errors"
	"github.com/chanikul/edenclinic/internal/domain/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type adminResolverStub struct {
	admin *model.Admin
	err   error
}

func (s adminResolverStub) AdminFromToken(context.Context, string) (*model.Admin, error) {
	return s.admin, s.err
}

type clientResolverStub struct {
	client *model.Client
	err    error
}

func (s clientResolverStub) ClientFromToken(context.Context, string) (*model.Client, error) {
	return s.client, s.err
}

func TestAdminRequired(t *testing.T) {
	router := gin.New()
	router.Use(AdminRequired(adminResolverStub{}))
	router.GET("/", func(c *gin.Context) {})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.Code)
	}

	cases := []struct {
		err  error
		want int
	}{
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{domainErrors.ErrInactiveUser, http.StatusUnauthorized},
		{domainErrors.ErrForbidden, http.StatusForbidden},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		router = gin.New()
		router.Use(AdminRequired(adminResolverStub{err: tc.err}))
		router.GET("/", func(c *gin.Context) {})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer token")
		resp = httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("err %v: expected %d, got %d", tc.err, tc.want, resp.Code)
		}
	}

	var stored *model.Admin
	router = gin.New()
	router.Use(AdminRequired(adminResolverStub{admin: &model.Admin{ID: 42, Email: "staff@edenclinic.co.uk"}}))
	router.GET("/", func(c *gin.Context) {
		if v, ok := c.Get(AdminContextKey); ok {
			stored = v.(*model.Admin)
		}
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer token")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if stored == nil || stored.ID != 42 {
		t.Fatalf("expected admin in context, got %+v", stored)
	}
}

func TestPatientRequired(t *testing.T) {
	var stored *model.Client
	router := gin.New()
	router.Use(PatientRequired(clientResolverStub{client: &model.Client{ID: 7}}))
	router.GET("/", func(c *gin.Context) {
		if v, ok := c.Get(ClientContextKey); ok {
			stored = v.(*model.Client)
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: patientCookieName, Value: "token"})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if stored == nil || stored.ID != 7 {
		t.Fatalf("expected client in context, got %+v", stored)
	}
}

func TestAuthCookies(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	SetAdminCookie(c, "admin-token")
	SetPatientCookie(c, "patient-token")
	result := recorder.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	cookies := result.Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected two cookies, got %+v", cookies)
	}
	for _, cookie := range cookies {
		if !cookie.HttpOnly {
			t.Fatalf("cookie %q must be httpOnly", cookie.Name)
		}
		switch cookie.Name {
		case adminCookieName:
			if cookie.MaxAge != adminCookieMaxAge {
				t.Fatalf("admin cookie max-age %d, want %d", cookie.MaxAge, adminCookieMaxAge)
			}
		case patientCookieName:
			if cookie.MaxAge != patientCookieMaxAge {
				t.Fatalf("patient cookie max-age %d, want %d", cookie.MaxAge, patientCookieMaxAge)
			}
		default:
			t.Fatalf("unexpected cookie %q", cookie.Name)
		}
	}

	recorder = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(recorder)
	ClearAuthCookies(c)
	cleared := recorder.Result()
	t.Cleanup(func() {
		_ = cleared.Body.Close()
	})
	for _, cookie := range cleared.Cookies() {
		if cookie.MaxAge >= 0 {
			t.Fatalf("cookie %q not expired", cookie.Name)
		}
	}
}

func TestExtractToken(t *testing.T) {
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)
	if token := extractToken(c, adminCookieName); token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
	c.Request.Header.Set("Authorization", "Bearer abc")
	if token := extractToken(c, adminCookieName); token != "abc" {
		t.Fatalf("expected token from header, got %q", token)
	}
	c.Request.Header.Del("Authorization")
	c.Request.AddCookie(&http.Cookie{Name: adminCookieName, Value: "cookie"})
	if token := extractToken(c, adminCookieName); token != "cookie" {
		t.Fatalf("expected token from cookie, got %q", token)
	}
	if token := extractToken(c, patientCookieName); token != "" {
		t.Fatalf("admin cookie must not satisfy patient scheme, got %q", token)
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte("payload"))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest())
	var body string
	router.POST("/", func(c *gin.Context) {
		data, _ := io.ReadAll(c.Request.Body)
		body = string(data)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader(buf.Bytes())))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if body != "payload" {
		t.Fatalf("expected decompressed payload, got %q", body)
	}

	req = httptest.NewRequest(http.MethodPost, "/", io.NopCloser(bytes.NewReader([]byte("plain"))))
	resp = httptest.NewRecorder()
	body = ""
	router.ServeHTTP(resp, req)
	if body != "plain" {
		t.Fatalf("expected plain body, got %q", body)
	}
}

func TestRequestLogger(t *testing.T) {
	var logged bool
	handler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.LevelKey && a.Value.Any() == slog.LevelInfo {
			logged = true
		}
		return a
	}})
	logger := slog.New(handler)

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if !logged {
		t.Fatalf("expected request to be logged")
	}
}
