package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/six-cities-api/config"
	"github.com/oksasatya/six-cities-api/internal/container"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/filestore"
	"github.com/oksasatya/six-cities-api/internal/infrastructure/memory"
	"github.com/oksasatya/six-cities-api/internal/interface/middleware"
	"github.com/oksasatya/six-cities-api/internal/router"
	"github.com/oksasatya/six-cities-api/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	t       *testing.T
	engine  *gin.Engine
	uploads string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	uploadDir := t.TempDir()
	cfg := &config.Config{
		AppName:             "six-cities",
		Salt:                "pepper",
		TokenSecret:         "test-secret",
		TokenTTL:            time.Hour,
		UploadDir:           uploadDir,
		UploadMaxBytes:      1 << 20,
		StaticPrefix:        "/uploads",
		DebugMetricsEnabled: true,
	}
	store, err := filestore.NewDisk(uploadDir, cfg.StaticPrefix)
	if err != nil {
		t.Fatal(err)
	}
	c := container.New(&container.Container{Config: cfg, Logger: helpers.NewNopLogger(), Store: store}, container.Repositories{
		Users:    memory.NewUserRepository(),
		Tokens:   memory.NewTokenRepository(),
		Offers:   memory.NewOfferRepository(),
		Comments: memory.NewCommentRepository(),
	})

	r := gin.New()
	r.Use(middleware.Recovery(c.Logger), middleware.RequestIDMiddleware(), middleware.RealIP())
	reg := router.NewRegistry(r)
	router.InitModules(reg, c)
	reg.RegisterAll()
	return &api{t: t, engine: r, uploads: uploadDir}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *api) expect(w *httptest.ResponseRecorder, code int, out any) {
	a.t.Helper()
	if w.Code != code {
		a.t.Fatalf("status = %d, want %d; body = %s", w.Code, code, w.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			a.t.Fatalf("decode %s: %v", w.Body.String(), err)
		}
	}
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Type  string `json:"type"`
	} `json:"user"`
}

type offerResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	City          string   `json:"city"`
	PreviewImage  string   `json:"previewImage"`
	Photos        []string `json:"photos"`
	IsPremium     bool     `json:"isPremium"`
	IsFavorite    bool     `json:"isFavorite"`
	Rating        float64  `json:"rating"`
	Type          string   `json:"type"`
	Rooms         int      `json:"rooms"`
	Guests        int      `json:"guests"`
	Price         int      `json:"price"`
	Amenities     []string `json:"amenities"`
	AuthorID      string   `json:"authorId"`
	CommentsCount int      `json:"commentsCount"`
	Host          *struct {
		ID string `json:"id"`
	} `json:"host"`
	Coordinates struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"coordinates"`
}

func (a *api) register(email, typ string) authResponse {
	a.t.Helper()
	var out authResponse
	a.expect(a.do(http.MethodPost, "/users/registry", "", map[string]any{
		"name": "Tester", "email": email, "password": "secret1", "type": typ,
	}), http.StatusCreated, &out)
	return out
}

func (a *api) login(email string) string {
	a.t.Helper()
	var out authResponse
	a.expect(a.do(http.MethodPost, "/users/login", "", map[string]any{
		"email": email, "password": "secret1",
	}), http.StatusOK, &out)
	return out.Token
}

func offerBody(city string, premium bool) map[string]any {
	return map[string]any{
		"title":        "Cozy flat near the canal",
		"description":  "Bright two-room flat with a view over the canal.",
		"city":         city,
		"previewImage": "preview.jpg",
		"images":       []string{"1.jpg", "2.jpg", "3.jpg"},
		"isPremium":    premium,
		"type":         "apartment",
		"bedrooms":     2,
		"maxAdults":    4,
		"price":        250,
		"amenities":    []string{"Breakfast", "Washer"},
		"coordinates":  map[string]float64{"latitude": 52.370216, "longitude": 4.895168},
	}
}

func (a *api) createOffer(token, city string, premium bool) offerResponse {
	a.t.Helper()
	var out offerResponse
	a.expect(a.do(http.MethodPost, "/offers", token, offerBody(city, premium)), http.StatusCreated, &out)
	return out
}

func TestCommentRatingAndOwnershipScenario(t *testing.T) {
	a := newAPI(t)
	a.register("a@x.com", "usual")
	tokenA := a.login("a@x.com")
	offer := a.createOffer(tokenA, "Amsterdam", false)

	comment := func(rating int) {
		a.expect(a.do(http.MethodPost, "/offers/"+offer.ID+"/comments", tokenA, map[string]any{
			"text": "Lovely stay, would come again", "rating": rating,
		}), http.StatusCreated, nil)
	}
	var got offerResponse

	comment(4)
	a.expect(a.do(http.MethodGet, "/offers/"+offer.ID, "", nil), http.StatusOK, &got)
	if got.Rating != 4.0 || got.CommentsCount != 1 {
		t.Fatalf("after first comment: rating=%v count=%d", got.Rating, got.CommentsCount)
	}

	comment(2)
	a.expect(a.do(http.MethodGet, "/offers/"+offer.ID, "", nil), http.StatusOK, &got)
	if got.Rating != 3.0 || got.CommentsCount != 2 {
		t.Fatalf("after second comment: rating=%v count=%d", got.Rating, got.CommentsCount)
	}

	a.register("b@x.com", "usual")
	tokenB := a.login("b@x.com")
	a.expect(a.do(http.MethodPatch, "/offers/"+offer.ID, tokenB, map[string]any{"price": 500}), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodDelete, "/offers/"+offer.ID, tokenB, nil), http.StatusForbidden, nil)

	var comments []struct {
		Rating int `json:"rating"`
		User   struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	a.expect(a.do(http.MethodGet, "/offers/"+offer.ID+"/comments", "", nil), http.StatusOK, &comments)
	if len(comments) != 2 || comments[0].Rating != 2 || comments[0].User.Email != "a@x.com" {
		t.Fatalf("comments = %+v", comments)
	}
}

func TestPremiumScenario(t *testing.T) {
	a := newAPI(t)
	usual := a.register("u@x.com", "usual")
	pro := a.register("p@x.com", "pro")
	a.createOffer(pro.Token, "Paris", true)
	a.createOffer(pro.Token, "Paris", false)
	a.createOffer(pro.Token, "Brussels", true)

	a.expect(a.do(http.MethodGet, "/offers/premium/Paris", "", nil), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodGet, "/offers/premium/Paris", usual.Token, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodGet, "/offers/premium/Atlantis", usual.Token, nil), http.StatusForbidden, nil)
	a.expect(a.do(http.MethodGet, "/offers/premium/Atlantis", pro.Token, nil), http.StatusBadRequest, nil)

	var list []struct {
		City      string `json:"city"`
		IsPremium bool   `json:"isPremium"`
	}
	a.expect(a.do(http.MethodGet, "/offers/premium/Paris", pro.Token, nil), http.StatusOK, &list)
	if len(list) != 1 || list[0].City != "Paris" || !list[0].IsPremium {
		t.Fatalf("premium list = %+v", list)
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	a := newAPI(t)
	host := a.register("h@x.com", "pro")
	created := a.createOffer(host.Token, "Cologne", true)

	var got offerResponse
	a.expect(a.do(http.MethodGet, "/offers/"+created.ID, "", nil), http.StatusOK, &got)
	in := offerBody("Cologne", true)
	coords := in["coordinates"].(map[string]float64)
	if got.Name != in["title"] ||
		got.Description != in["description"] ||
		got.City != "Cologne" ||
		got.PreviewImage != "preview.jpg" ||
		strings.Join(got.Photos, ",") != "1.jpg,2.jpg,3.jpg" ||
		!got.IsPremium ||
		got.Type != "apartment" ||
		got.Rooms != 2 ||
		got.Guests != 4 ||
		got.Price != 250 ||
		strings.Join(got.Amenities, ",") != "Breakfast,Washer" ||
		got.Coordinates.Lat != coords["latitude"] ||
		got.Coordinates.Lng != coords["longitude"] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.AuthorID != host.User.ID || got.Host == nil || got.Host.ID != host.User.ID {
		t.Fatalf("author not set: %+v", got)
	}
	if got.Rating != 0 || got.CommentsCount != 0 || got.IsFavorite {
		t.Fatalf("derived fields not zero: %+v", got)
	}
}

func TestDuplicateRegistration(t *testing.T) {
	a := newAPI(t)
	first := a.register("a@x.com", "usual")
	w := a.do(http.MethodPost, "/users/registry", "", map[string]any{
		"name": "Other", "email": "a@x.com", "password": "another1", "type": "pro",
	})
	a.expect(w, http.StatusConflict, nil)

	var user struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Type string `json:"type"`
	}
	a.expect(a.do(http.MethodGet, "/users/check", first.Token, nil), http.StatusOK, &user)
	if user.ID != first.User.ID || user.Name != "Tester" || user.Type != "usual" {
		t.Fatalf("first user changed: %+v", user)
	}
}

func TestOwnerGatedRoutesWithoutToken(t *testing.T) {
	a := newAPI(t)
	host := a.register("h@x.com", "usual")
	offer := a.createOffer(host.Token, "Paris", false)
	id := offer.ID

	cases := []struct {
		method, path string
		body         any
	}{
		{http.MethodPost, "/offers", offerBody("Paris", false)},
		{http.MethodPatch, "/offers/" + id, map[string]any{"price": 300}},
		{http.MethodDelete, "/offers/" + id, nil},
		{http.MethodPost, "/offers/" + id + "/comments", map[string]any{"text": "Great place!", "rating": 5}},
		{http.MethodPost, "/offers/" + id + "/favorite", nil},
		{http.MethodGet, "/offers/favorites", nil},
		{http.MethodGet, "/users/check", nil},
		{http.MethodDelete, "/users/login", nil},
	}
	for _, tc := range cases {
		for _, token := range []string{"", "not-a-real-token"} {
			w := a.do(tc.method, tc.path, token, tc.body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("%s %s token=%q: status = %d", tc.method, tc.path, token, w.Code)
			}
		}
	}
}

func TestOfferLifecycle(t *testing.T) {
	a := newAPI(t)
	host := a.register("h@x.com", "usual")
	fan := a.register("f@x.com", "usual")
	offer := a.createOffer(host.Token, "Hamburg", false)
	path := "/offers/" + offer.ID

	a.expect(a.do(http.MethodGet, "/offers/123", "", nil), http.StatusBadRequest, nil)
	a.expect(a.do(http.MethodGet, "/offers/000000000000000000000000", "", nil), http.StatusNotFound, nil)
	a.expect(a.do(http.MethodPatch, path, host.Token, map[string]any{"city": "Berlin"}), http.StatusBadRequest, nil)

	var updated offerResponse
	a.expect(a.do(http.MethodPatch, path, host.Token, map[string]any{"title": "Harbour view apartment", "bedrooms": 3}), http.StatusOK, &updated)
	if updated.Name != "Harbour view apartment" || updated.Rooms != 3 || updated.Price != 250 {
		t.Fatalf("update = %+v", updated)
	}

	var fav offerResponse
	a.expect(a.do(http.MethodPost, path+"/favorite", fan.Token, nil), http.StatusOK, &fav)
	if !fav.IsFavorite {
		t.Fatal("favorite not set")
	}
	var list []offerResponse
	a.expect(a.do(http.MethodGet, "/offers", fan.Token, nil), http.StatusOK, &list)
	if len(list) != 1 || !list[0].IsFavorite {
		t.Fatalf("list for fan = %+v", list)
	}
	a.expect(a.do(http.MethodGet, "/offers", "", nil), http.StatusOK, &list)
	if list[0].IsFavorite {
		t.Fatal("anonymous list shows favorite")
	}
	a.expect(a.do(http.MethodGet, "/offers/favorites", fan.Token, nil), http.StatusOK, &list)
	if len(list) != 1 {
		t.Fatalf("favorites = %d", len(list))
	}

	a.expect(a.do(http.MethodPost, path+"/comments", fan.Token, map[string]any{"text": "Great place!", "rating": 5}), http.StatusCreated, nil)
	a.expect(a.do(http.MethodDelete, path, host.Token, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, path, "", nil), http.StatusNotFound, nil)
	a.expect(a.do(http.MethodGet, path+"/comments", "", nil), http.StatusNotFound, nil)
	a.expect(a.do(http.MethodDelete, path, host.Token, nil), http.StatusNotFound, nil)
	a.expect(a.do(http.MethodGet, "/offers/favorites", fan.Token, nil), http.StatusOK, &list)
	if len(list) != 0 {
		t.Fatalf("favorites after delete = %d", len(list))
	}
}

func TestListLimitAndSearch(t *testing.T) {
	a := newAPI(t)
	host := a.register("h@x.com", "usual")
	a.createOffer(host.Token, "Paris", false)
	a.createOffer(host.Token, "Dusseldorf", false)

	var list []offerResponse
	a.expect(a.do(http.MethodGet, "/offers?limit=1", "", nil), http.StatusOK, &list)
	if len(list) != 1 {
		t.Fatalf("limit=1 returned %d", len(list))
	}
	a.expect(a.do(http.MethodGet, "/offers?limit=abc", "", nil), http.StatusBadRequest, nil)
	a.expect(a.do(http.MethodGet, "/offers?limit=0", "", nil), http.StatusBadRequest, nil)

	a.expect(a.do(http.MethodGet, "/offers/search?q=dusseldorf", "", nil), http.StatusOK, &list)
	if len(list) != 1 || list[0].City != "Dusseldorf" {
		t.Fatalf("search = %+v", list)
	}
	a.expect(a.do(http.MethodGet, "/offers/search", "", nil), http.StatusBadRequest, nil)
}

func TestLoginLogout(t *testing.T) {
	a := newAPI(t)
	reg := a.register("a@x.com", "usual")
	a.expect(a.do(http.MethodPost, "/users/login", "", map[string]any{"email": "a@x.com", "password": "wrong-pass"}), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodPost, "/users/login", "", map[string]any{"email": "a@x.com"}), http.StatusBadRequest, nil)

	second := a.login("a@x.com")
	a.expect(a.do(http.MethodDelete, "/users/login", reg.Token, nil), http.StatusNoContent, nil)
	a.expect(a.do(http.MethodGet, "/users/check", reg.Token, nil), http.StatusUnauthorized, nil)
	a.expect(a.do(http.MethodGet, "/users/check", second, nil), http.StatusOK, nil)
}

func TestRegistrationValidation(t *testing.T) {
	a := newAPI(t)
	w := a.do(http.MethodPost, "/users/registry", "", map[string]any{
		"name": "Tester", "email": "not-an-email", "password": "123", "type": "admin",
	})
	var body struct {
		Success bool `json:"success"`
		Error   []struct {
			Field string `json:"field"`
		} `json:"error"`
	}
	a.expect(w, http.StatusBadRequest, &body)
	if body.Success || len(body.Error) != 3 {
		t.Fatalf("body = %s", w.Body.String())
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func (a *api) upload(path, token, field string, content []byte) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile(field, "image.png")
	_, _ = fw.Write(content)
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func TestUploads(t *testing.T) {
	a := newAPI(t)
	host := a.register("h@x.com", "usual")
	other := a.register("o@x.com", "usual")
	offer := a.createOffer(host.Token, "Paris", false)

	var avatar struct {
		AvatarURL string `json:"avatarUrl"`
	}
	a.expect(a.upload("/users/avatar", host.Token, "avatar", pngHeader), http.StatusOK, &avatar)
	if !strings.HasPrefix(avatar.AvatarURL, "/uploads/avatars/") {
		t.Fatalf("avatar url = %q", avatar.AvatarURL)
	}
	a.expect(a.do(http.MethodGet, avatar.AvatarURL, "", nil), http.StatusOK, nil)

	var got offerResponse
	a.expect(a.upload("/offers/"+offer.ID+"/image", host.Token, "previewImage", pngHeader), http.StatusOK, &got)
	if !strings.HasPrefix(got.PreviewImage, "/uploads/offers/") {
		t.Fatalf("preview = %q", got.PreviewImage)
	}
	a.expect(a.upload("/offers/"+offer.ID+"/photos", host.Token, "photos", pngHeader), http.StatusOK, &got)
	if len(got.Photos) != 4 {
		t.Fatalf("photos = %v", got.Photos)
	}

	a.expect(a.upload("/offers/"+offer.ID+"/image", other.Token, "previewImage", pngHeader), http.StatusForbidden, nil)
	a.expect(a.upload("/offers/"+offer.ID+"/photos", other.Token, "photos", pngHeader), http.StatusForbidden, nil)
	a.expect(a.upload("/offers/000000000000000000000000/photos", other.Token, "photos", pngHeader), http.StatusNotFound, nil)
	a.expect(a.upload("/offers/"+offer.ID+"/image", "", "previewImage", pngHeader), http.StatusUnauthorized, nil)

	// only the owner's two uploads reached the store
	stored, err := os.ReadDir(filepath.Join(a.uploads, "offers"))
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("offers dir holds %d files, want 2", len(stored))
	}
	tmp, _ := os.ReadDir(filepath.Join(a.uploads, "tmp"))
	if len(tmp) != 0 {
		t.Fatalf("tmp dir holds %d files", len(tmp))
	}
	a.expect(a.upload("/users/avatar", host.Token, "avatar", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")), http.StatusBadRequest, nil)
}

func TestDebugVars(t *testing.T) {
	a := newAPI(t)
	a.expect(a.do(http.MethodGet, "/debug/vars", "", nil), http.StatusOK, nil)
}
