package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"pixshelf/config"
	"pixshelf/internal/auth"
	"pixshelf/middleware"
	"pixshelf/model"
	"pixshelf/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memImageStore backs the image service with a map for handler tests.
type memImageStore struct {
	images map[uint64]*model.Image
	nextID uint64
}

func newMemImageStore() *memImageStore {
	return &memImageStore{images: map[uint64]*model.Image{}}
}

func (m *memImageStore) CreateBatch(images []*model.Image) error {
	for _, img := range images {
		m.nextID++
		img.ID = m.nextID
		cp := *img
		m.images[img.ID] = &cp
	}
	return nil
}

func (m *memImageStore) FindByID(id uint64) (*model.Image, error) {
	img, ok := m.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *img
	return &cp, nil
}

func (m *memImageStore) FindByUser(userID uint64) ([]model.Image, error) {
	var out []model.Image
	for _, img := range m.images {
		if img.UserID == userID {
			out = append(out, *img)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memImageStore) Update(id uint64, updates map[string]interface{}) (*model.Image, error) {
	img, ok := m.images[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if title, ok := updates["title"]; ok {
		img.Title = title.(string)
	}
	if url, ok := updates["image_url"]; ok {
		img.ImageURL = url.(string)
	}
	cp := *img
	return &cp, nil
}

func (m *memImageStore) UpdatePosition(userID, id uint64, position int) error {
	if img, ok := m.images[id]; ok && img.UserID == userID {
		img.Position = position
	}
	return nil
}

func (m *memImageStore) DeleteByID(id uint64) (bool, error) {
	if _, ok := m.images[id]; !ok {
		return false, nil
	}
	delete(m.images, id)
	return true, nil
}

// memObjectStore records uploads and hands back fake durable URLs.
type memObjectStore struct {
	puts int
}

func (m *memObjectStore) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	m.puts++
	_, _ = io.Copy(io.Discard, body)
	return "https://cdn.test/" + key, nil
}

func galleryRouter(t *testing.T) (*gin.Engine, *memImageStore, *memObjectStore, *http.Cookie) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.GlobalConfig = &config.Config{JWT: config.JWTConfig{Secret: "s", Expire: 3600}}

	store := newMemImageStore()
	objects := &memObjectStore{}
	api := NewImageAPI(service.NewImageService(store), objects)

	r := gin.New()
	images := r.Group("/images", middleware.RequireSession())
	images.POST("/upload", api.Upload)
	images.GET("", api.List)
	images.PUT("/reorder", api.Reorder)
	images.PATCH("/:id", api.Update)
	images.DELETE("/:id", api.Delete)

	token, err := auth.GenerateToken(&model.User{ID: 1, Username: "amy"})
	require.NoError(t, err)
	return r, store, objects, &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func multipartUpload(t *testing.T, files []string, titles string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, name := range files {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	if titles != "" {
		require.NoError(t, w.WriteField("titles", titles))
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestUploadRequiresSession(t *testing.T) {
	r, _, _, _ := galleryRouter(t)

	body, contentType := multipartUpload(t, []string{"a.png"}, `["a"]`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/images/upload", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUploadNoFiles(t *testing.T) {
	r, _, objects, cookie := galleryRouter(t)

	body, contentType := multipartUpload(t, nil, `["a"]`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/images/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No files uploaded")
	assert.Zero(t, objects.puts)
}

func TestUploadWithTitles(t *testing.T) {
	r, _, objects, cookie := galleryRouter(t)

	body, contentType := multipartUpload(t, []string{"a.png", "b.png"}, `["sunset","dawn"]`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/images/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, objects.puts)

	var created []model.Image
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created, 2)
	assert.Equal(t, "sunset", created[0].Title)
	assert.Equal(t, 0, created[0].Position)
	assert.Equal(t, "dawn", created[1].Title)
	assert.Equal(t, 1, created[1].Position)
	assert.Contains(t, created[0].ImageURL, "https://cdn.test/")
}

func TestUploadTitleFallback(t *testing.T) {
	r, _, _, cookie := galleryRouter(t)

	// Two files, one title: the second falls back to the default.
	body, contentType := multipartUpload(t, []string{"a.png", "b.png"}, `["only one"]`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/images/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var created []model.Image
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created, 2)
	assert.Equal(t, "only one", created[0].Title)
	assert.Equal(t, "Untitled", created[1].Title)
}

func TestListReturnsGalleryInOrder(t *testing.T) {
	r, store, _, cookie := galleryRouter(t)
	require.NoError(t, store.CreateBatch([]*model.Image{
		{UserID: 1, Title: "second", ImageURL: "u", Position: 1},
		{UserID: 1, Title: "first", ImageURL: "u", Position: 0},
		{UserID: 2, Title: "other user", ImageURL: "u", Position: 0},
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/images", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var images []model.Image
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &images))
	require.Len(t, images, 2)
	assert.Equal(t, "first", images[0].Title)
	assert.Equal(t, "second", images[1].Title)
}

func TestReorderEndpoint(t *testing.T) {
	r, store, _, cookie := galleryRouter(t)
	require.NoError(t, store.CreateBatch([]*model.Image{
		{UserID: 1, Title: "a", ImageURL: "u", Position: 0},
		{UserID: 1, Title: "b", ImageURL: "u", Position: 1},
	}))

	payload := `{"updates":[{"id":1,"order":5},{"id":2,"order":2}]}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/images/reorder", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	images, err := store.FindByUser(1)
	require.NoError(t, err)
	assert.Equal(t, "b", images[0].Title)
	assert.Equal(t, "a", images[1].Title)
}

func TestUpdateRequiresData(t *testing.T) {
	r, store, _, cookie := galleryRouter(t)
	require.NoError(t, store.CreateBatch([]*model.Image{
		{UserID: 1, Title: "a", ImageURL: "u", Position: 0},
	}))

	body, contentType := multipartUpload(t, nil, "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/images/1", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Update data required")
}

func TestUpdateTitle(t *testing.T) {
	r, store, _, cookie := galleryRouter(t)
	require.NoError(t, store.CreateBatch([]*model.Image{
		{UserID: 1, Title: "a", ImageURL: "u", Position: 0},
	}))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("title", "renamed"))
	require.NoError(t, w.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/images/1", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(cookie)
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var img model.Image
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &img))
	assert.Equal(t, "renamed", img.Title)
}

func TestUpdateNotFound(t *testing.T) {
	r, _, _, cookie := galleryRouter(t)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("title", "renamed"))
	require.NoError(t, w.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/images/99", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(cookie)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	r, store, _, cookie := galleryRouter(t)
	require.NoError(t, store.CreateBatch([]*model.Image{
		{UserID: 1, Title: "a", ImageURL: "u", Position: 0},
	}))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"bad id", "/images/not-a-number", http.StatusBadRequest},
		{"existing", "/images/1", http.StatusOK},
		{"already gone", "/images/1", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			req.AddCookie(cookie)
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, fmt.Sprintf("path %s", tt.path))
		})
	}
}
