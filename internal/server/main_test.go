package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"photoalbum/internal/config"
	"photoalbum/internal/database"
	"photoalbum/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	srv   *Server
	db    *gorm.DB
	store *storage.MemoryStore
}

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		Env:               "test",
		SessionSecret:     "test-session-secret-0123456789abcdef",
		SessionTTLMinutes: 60,
		BcryptCost:        4,
		UploadMaxSizeMB:   1,
		UploadBackend:     "memory",
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	store := storage.NewMemoryStore()
	srv, err := NewServerWithDeps(testConfig(), db, nil, store)
	require.NoError(t, err)

	return &testEnv{srv: srv, db: db, store: store}
}

// browser keeps cookies between requests like a user agent would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, app: e.srv.App(), cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, ck := range resp.Cookies() {
		expired := ck.MaxAge < 0 || ck.Value == "" || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now()))
		if expired {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) getJSON(path string, dest any) *http.Response {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	resp := b.do(req)
	if dest != nil {
		require.NoError(b.t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp
}

// csrf returns the current CSRF token, fetching a page first if needed.
func (b *browser) csrf() string {
	b.t.Helper()
	if token, ok := b.cookies[csrfCookieName]; ok {
		return token
	}
	resp := b.get("/login")
	_ = resp.Body.Close()
	token := b.cookies[csrfCookieName]
	require.NotEmpty(b.t, token, "csrf cookie")
	return token
}

func (b *browser) postForm(path string, form url.Values) *http.Response {
	b.t.Helper()
	form.Set(csrfFormField, b.csrf())
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	return b.do(req)
}

func (b *browser) sendJSON(method, path string, body any) *http.Response {
	b.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(b.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Csrf-Token", b.csrf())
	return b.do(req)
}

func (b *browser) upload(fields map[string]string, filename string, content []byte) *http.Response {
	b.t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(b.t, w.WriteField(csrfFormField, b.csrf()))
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(b.t, err)
		_, err = part.Write(content)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	return b.do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func (b *browser) register(username, password string) {
	b.t.Helper()
	resp := b.postForm("/register", url.Values{
		"username":         {username},
		"email":            {username + "@example.com"},
		"password":         {password},
		"confirm_password": {password},
	})
	_ = resp.Body.Close()
	require.Equal(b.t, fiber.StatusFound, resp.StatusCode)
	require.Equal(b.t, "/login", resp.Header.Get(fiber.HeaderLocation))
}

func (b *browser) login(username, password string, remember bool) *http.Response {
	b.t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	if remember {
		form.Set("remember", "on")
	}
	return b.postForm("/login", form)
}
