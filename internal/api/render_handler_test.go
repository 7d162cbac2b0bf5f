package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"openResume/internal/preview"
)

func newRenderRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewRenderHandler(slog.Default(), preview.DefaultConfig())
	router.POST("/v1/render/preview", h.RenderPreview)
	router.GET("/v1/templates", h.ListTemplates)
	return router
}

func TestRenderPreviewReturnsPNG(t *testing.T) {
	router := newRenderRouter(t)

	body, _ := json.Marshal(map[string]any{
		"content": json.RawMessage(snapshotJSON(t, "modern")),
		"width":   600,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/render/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body %s", w.Code, w.Body.String())
	}
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a png: %v", err)
	}
	if img.Bounds().Dx() == 0 {
		t.Fatal("empty preview image")
	}
}

func TestRenderPreviewRejectsOutOfRangePage(t *testing.T) {
	router := newRenderRouter(t)

	body, _ := json.Marshal(map[string]any{
		"content": json.RawMessage(snapshotJSON(t, "modern")),
		"page":    5,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/render/preview", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestListTemplatesIncludesBuiltins(t *testing.T) {
	router := newRenderRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/templates", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}

	var resp struct {
		Templates []string `json:"templates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	found := map[string]bool{}
	for _, name := range resp.Templates {
		found[name] = true
	}
	if !found["modern"] || !found["plain"] {
		t.Fatalf("builtin templates missing: %v", resp.Templates)
	}
}
