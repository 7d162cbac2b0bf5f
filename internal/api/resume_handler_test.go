package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"openResume/internal/database"
	"openResume/internal/resume"
)

type fakeStore struct {
	presign map[string]string
	deleted []string
}

func (s *fakeStore) GenerateDownloadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	if v, ok := s.presign[objectKey]; ok {
		return v, nil
	}
	return "https://example.invalid/" + objectKey, nil
}

func (s *fakeStore) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.Resume{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newTestRouter 绕过 JWT 中间件，直接以固定 userID 注册路由。
func newTestRouter(t *testing.T, db *gorm.DB, store ObjectStore, userID uint) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})

	h := NewResumeHandler(db, nil, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router.POST("/v1/resumes", h.CreateResume)
	router.GET("/v1/resumes", h.ListResumes)
	router.GET("/v1/resumes/latest", h.GetLatestResume)
	router.GET("/v1/resumes/:id", h.GetResume)
	router.PUT("/v1/resumes/:id", h.UpdateResume)
	router.DELETE("/v1/resumes/:id", h.DeleteResume)
	router.GET("/v1/resumes/:id/download-link", h.GetDownloadLink)
	return router
}

func snapshotJSON(t *testing.T, template string) []byte {
	t.Helper()
	doc := resume.Resume{
		Metadata: resume.Metadata{Template: template},
		Personal: resume.PersonalInfo{FullName: "Jane Doe"},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func createResume(t *testing.T, router *gin.Engine, template string) resumeResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]any{
		"title":   "测试简历",
		"content": json.RawMessage(snapshotJSON(t, template)),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/resumes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create resume: status %d body %s", w.Code, w.Body.String())
	}
	var resp resumeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestCreateResumeStoresTemplateFromSnapshot(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db, &fakeStore{}, 7)

	resp := createResume(t, router, "modern")
	if resp.Template != "modern" {
		t.Fatalf("template not lifted from snapshot: %q", resp.Template)
	}

	var row database.Resume
	if err := db.First(&row, resp.ID).Error; err != nil {
		t.Fatal(err)
	}
	if row.OwnerID != 7 {
		t.Fatalf("owner not recorded: %d", row.OwnerID)
	}
}

func TestCreateResumeRejectsMalformedContent(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db, &fakeStore{}, 7)

	body := []byte(`{"title":"x","content":"not an object"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/resumes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestGetResumeEnforcesOwnership(t *testing.T) {
	db := newTestDB(t)
	owner := newTestRouter(t, db, &fakeStore{}, 7)
	stranger := newTestRouter(t, db, &fakeStore{}, 8)

	resp := createResume(t, owner, "modern")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/"+itoa(resp.ID), nil)
	stranger.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("stranger access: want 404, got %d", w.Code)
	}
}

func TestGetLatestResumeFallsBackToDefault(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db, &fakeStore{}, 7)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/latest", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}

	var resp resumeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID != 0 || resp.Template != "modern" {
		t.Fatalf("unexpected default resume: %+v", resp)
	}

	var snapshot resume.Resume
	if err := json.Unmarshal(resp.Content, &snapshot); err != nil {
		t.Fatalf("default content is not a valid snapshot: %v", err)
	}
	if len(snapshot.Sections) == 0 {
		t.Fatal("default snapshot has no sections")
	}
}

func TestDownloadLinkRequiresGeneratedPdf(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{presign: map[string]string{}}
	router := newTestRouter(t, db, store, 7)

	resp := createResume(t, router, "modern")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/resumes/"+itoa(resp.ID)+"/download-link", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("pdf not ready: want 409, got %d", w.Code)
	}

	if err := db.Model(&database.Resume{}).Where("id = ?", resp.ID).
		Update("pdf_key", "generated-resumes/7/x.pdf").Error; err != nil {
		t.Fatal(err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/resumes/"+itoa(resp.ID)+"/download-link", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body %s", w.Code, w.Body.String())
	}
	var link struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &link); err != nil {
		t.Fatal(err)
	}
	if link.URL == "" {
		t.Fatal("empty download url")
	}
}

func TestDeleteResume(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(t, db, &fakeStore{}, 7)

	resp := createResume(t, router, "modern")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/resumes/"+itoa(resp.ID), nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d", w.Code)
	}

	var count int64
	if err := db.Model(&database.Resume{}).Where("id = ?", resp.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatal("resume row still present after delete")
	}
}

func TestDeleteResumeRemovesStoredObjects(t *testing.T) {
	db := newTestDB(t)
	store := &fakeStore{}
	router := newTestRouter(t, db, store, 7)

	resp := createResume(t, router, "modern")
	if err := db.Model(&database.Resume{}).Where("id = ?", resp.ID).Updates(map[string]any{
		"pdf_key":     "generated-resumes/7/x.pdf",
		"preview_key": "thumbnails/resume/7/preview.png",
	}).Error; err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/v1/resumes/"+itoa(resp.ID), nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("want 204, got %d", w.Code)
	}

	if len(store.deleted) != 2 {
		t.Fatalf("deleted objects = %v, want pdf and thumbnail", store.deleted)
	}
	if store.deleted[0] != "generated-resumes/7/x.pdf" || store.deleted[1] != "thumbnails/resume/7/preview.png" {
		t.Fatalf("deleted objects = %v", store.deleted)
	}
}

func itoa(v uint) string {
	data, _ := json.Marshal(v)
	return string(data)
}
