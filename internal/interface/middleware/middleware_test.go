package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/six-cities-api/internal/application"
	"github.com/oksasatya/six-cities-api/internal/domain/entity"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/filestore"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/memory"
	"github.com/oksasatya/six-cities-api/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Error     json.RawMessage `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return e
}

func ok(c *gin.Context) { c.Status(http.StatusNoContent) }

func TestValidateObjectID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/offers/:offerId", ValidateObjectID("offerId"), ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/offers/not-an-id", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	e := decodeEnvelope(t, w)
	if e.Message != "offerId is invalid" || e.Success || e.RequestID == "" {
		t.Fatalf("unexpected body %+v", e)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/offers/5f8d0d55b54764421b7156c9", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("valid id: status = %d", w.Code)
	}
}

type sampleDto struct {
	Name  string `json:"name" binding:"required,min=3"`
	City  string `json:"city" binding:"required,city"`
	Count int    `json:"count" binding:"min=1"`
}

func TestValidateDTO(t *testing.T) {
	r := gin.New()
	r.POST("/", ValidateDTO[sampleDto](), func(c *gin.Context) {
		c.JSON(http.StatusOK, DTO[sampleDto](c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ab","city":"Berlin","count":0}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Message string `json:"message"`
		Error   []struct {
			Field string `json:"field"`
			Tag   string `json:"tag"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	fields := map[string]string{}
	for _, e := range body.Error {
		fields[e.Field] = e.Tag
	}
	if body.Message != "validation failed" || fields["name"] != "min" || fields["city"] != "city" || fields["count"] != "min" {
		t.Fatalf("unexpected errors %s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed json: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"abc","city":"Paris","count":2}`)))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"Paris"`) {
		t.Fatalf("valid body: %d %s", w.Code, w.Body.String())
	}
}

func TestAuthenticateAndRequireCaller(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUserRepository()
	tokens := memory.NewTokenRepository()
	u := &entity.User{Email: "a@x.com", Type: entity.UserTypePro}
	if err := users.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	_ = tokens.Create(ctx, &entity.Token{UserID: u.ID, RefreshToken: "live", ExpiresAt: now.Add(time.Hour)})
	_ = tokens.Create(ctx, &entity.Token{UserID: u.ID, RefreshToken: "stale", ExpiresAt: now.Add(-time.Minute)})

	auth := application.NewAuthorizer(tokens, users)
	r := gin.New()
	r.GET("/open", Authenticate(auth, helpers.NewNopLogger()), func(c *gin.Context) {
		if caller := CallerFrom(c); caller != nil {
			c.String(http.StatusOK, caller.ID)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/closed", Authenticate(auth, helpers.NewNopLogger()), RequireCaller(), func(c *gin.Context) {
		c.String(http.StatusOK, BearerFrom(c))
	})

	cases := []struct {
		path, header string
		code         int
		body         string
	}{
		{"/open", "", http.StatusOK, "anonymous"},
		{"/open", "Bearer stale", http.StatusOK, "anonymous"},
		{"/open", "Bearer live", http.StatusOK, u.ID},
		{"/closed", "", http.StatusUnauthorized, ""},
		{"/closed", "live", http.StatusUnauthorized, ""},
		{"/closed", "Bearer stale", http.StatusUnauthorized, ""},
		{"/closed", "Bearer live", http.StatusOK, "live"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.code {
			t.Errorf("%s %q: status = %d, want %d", tc.path, tc.header, w.Code, tc.code)
			continue
		}
		if tc.body != "" && w.Body.String() != tc.body {
			t.Errorf("%s %q: body = %q, want %q", tc.path, tc.header, w.Body.String(), tc.body)
		}
	}
}

type failingTokens struct{ *memory.TokenRepository }

func (failingTokens) FindByValue(context.Context, string) (*entity.Token, error) {
	return nil, errors.New("db down")
}

func TestAuthenticateStorageFailure(t *testing.T) {
	auth := application.NewAuthorizer(failingTokens{memory.NewTokenRepository()}, memory.NewUserRepository())
	r := gin.New()
	r.GET("/", Authenticate(auth, helpers.NewNopLogger()), ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "db down") {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", "ignored")
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = fw.Write(content)
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func uploadRouter(t *testing.T, maxBytes int64) (*gin.Engine, string) {
	t.Helper()
	root := t.TempDir()
	store, err := filestore.NewDisk(root, "/uploads")
	if err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	r.POST("/avatar", Upload(store, UploadOptions{
		Field:    "avatar",
		Dir:      filestore.DirAvatars,
		Allowed:  AvatarTypes,
		MaxBytes: maxBytes,
	}, helpers.NewNopLogger()), func(c *gin.Context) {
		c.String(http.StatusOK, UploadedURL(c))
	})
	return r, root
}

func TestUploadStoresAllowedFile(t *testing.T) {
	r, root := uploadRouter(t, 1024)
	body, ct := multipartBody(t, "avatar", "me.png", pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/avatar", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	url := w.Body.String()
	if !strings.HasPrefix(url, "/uploads/avatars/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q", url)
	}
	if _, err := os.Stat(filepath.Join(root, filestore.DirAvatars, filepath.Base(url))); err != nil {
		t.Fatalf("file not stored: %v", err)
	}
	left, _ := os.ReadDir(filepath.Join(root, filestore.DirTmp))
	if len(left) != 0 {
		t.Fatalf("tmp not cleaned: %d files", len(left))
	}
}

func TestUploadRejections(t *testing.T) {
	r, root := uploadRouter(t, 64)
	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 128)...)

	cases := []struct {
		name    string
		field   string
		content []byte
		want    string
	}{
		{"disallowed type", "avatar", []byte("just some plain text"), "unsupported file type"},
		{"oversize", "avatar", big, "exceeds 64 bytes"},
		{"missing field", "photo", pngHeader, "avatar file is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.field, "f.png", tc.content)
			req := httptest.NewRequest(http.MethodPost, "/avatar", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), tc.want) {
				t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/avatar", strings.NewReader(`{}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-multipart: status = %d", w.Code)
	}

	for _, dir := range []string{filestore.DirAvatars, filestore.DirTmp} {
		if left, _ := os.ReadDir(filepath.Join(root, dir)); len(left) != 0 {
			t.Fatalf("%s not empty after rejections: %d files", dir, len(left))
		}
	}
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ctxRequestIDKey)) })

	const id = "3f2b8c1e-8d1a-4c8e-9a57-1f0f5f3f1a2b"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, id)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != id || w.Header().Get(headerRequestID) != id {
		t.Fatalf("request id not reused: %q", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() == "<script>" || w.Body.String() == "" {
		t.Fatalf("invalid request id kept: %q", w.Body.String())
	}
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, ClientIP(c)) })

	cases := map[string]string{
		"CF-Connecting-IP": "203.0.113.7",
		"X-Real-IP":        "198.51.100.2",
		"X-Forwarded-For":  "192.0.2.1, 10.0.0.1",
	}
	want := map[string]string{
		"CF-Connecting-IP": "203.0.113.7",
		"X-Real-IP":        "198.51.100.2",
		"X-Forwarded-For":  "192.0.2.1",
	}
	for h, v := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(h, v)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Body.String() != want[h] {
			t.Errorf("%s: got %q, want %q", h, w.Body.String(), want[h])
		}
	}
}

func TestRateLimitWithoutRedisIsNoop(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(nil, 1, time.Minute, KeyByIPAndPath(), nil), ok)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i, w.Code)
		}
	}
}

func TestRecoveryHidesPanic(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(), Recovery(helpers.NewNopLogger()))
	r.GET("/", func(c *gin.Context) { panic("secret detail") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "secret detail") {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestRequireOwnerStopsChain(t *testing.T) {
	checks := map[string]error{
		"mine":    nil,
		"theirs":  application.ErrForbidden,
		"missing": application.ErrNotFound,
		"anon":    application.ErrUnauthenticated,
		"broken":  errors.New("db down"),
	}
	check := func(_ context.Context, _ *application.Caller, id string) error { return checks[id] }

	reached := 0
	r := gin.New()
	r.POST("/offers/:offerId/photos", RequireOwner(check, "offerId", "offer", helpers.NewNopLogger()), func(c *gin.Context) {
		reached++
		c.Status(http.StatusOK)
	})

	cases := []struct {
		id      string
		code    int
		message string
	}{
		{"mine", http.StatusOK, ""},
		{"theirs", http.StatusForbidden, "forbidden"},
		{"missing", http.StatusNotFound, "offer with id missing not found"},
		{"anon", http.StatusUnauthorized, "unauthorized"},
		{"broken", http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/offers/"+tc.id+"/photos", nil))
		if w.Code != tc.code {
			t.Errorf("%s: status = %d, want %d", tc.id, w.Code, tc.code)
			continue
		}
		if tc.message != "" {
			if e := decodeEnvelope(t, w); e.Message != tc.message {
				t.Errorf("%s: message = %q", tc.id, e.Message)
			}
		}
	}
	if reached != 1 {
		t.Fatalf("handler reached %d times, want 1", reached)
	}
}
