package api

import (
	"image/png"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"openResume/internal/api/middleware"
	"openResume/internal/metrics"
	"openResume/internal/pdf"
	"openResume/internal/preview"
	"openResume/internal/resume"
)

// RenderHandler 提供同步渲染接口：编辑器在没有 WebSocket 通道时，
// 可以直接提交快照拿到一张预览位图。交互式的防抖预览由
// internal/preview.Pipeline 在编辑端承载，这里只做单次渲染。
type RenderHandler struct {
	logger     *slog.Logger
	conf       preview.Config
	rasterizer *preview.ImageRasterizer
}

// NewRenderHandler 构造 RenderHandler。字体解析失败属于构建产物损坏，直接 panic。
func NewRenderHandler(logger *slog.Logger, conf preview.Config) *RenderHandler {
	raster, err := preview.NewImageRasterizer()
	if err != nil {
		panic(err)
	}
	if conf.Width <= 0 {
		conf = preview.DefaultConfig()
	}
	return &RenderHandler{logger: logger, conf: conf, rasterizer: raster}
}

type renderPreviewRequest struct {
	Content resume.Resume `json:"content" binding:"required"`
	Width   float64       `json:"width"`
	Zoom    float64       `json:"zoom"`
	Page    int           `json:"page"`
}

// RenderPreview 同步渲染快照的某一页并返回 PNG。
func (h *RenderHandler) RenderPreview(c *gin.Context) {
	var req renderPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Width <= 0 {
		req.Width = h.conf.Width
	}
	if req.Zoom <= 0 {
		req.Zoom = h.conf.Zoom
	}

	log := middleware.LoggerFromContext(c)
	template := req.Content.Metadata.Template

	start := time.Now()
	doc := pdf.Generate(&req.Content, template, resume.Translations{}.Get)
	metrics.ObserveRender("generate", template, time.Since(start))

	if req.Page < 0 || req.Page >= doc.PageCount() {
		BadRequest(c, "page out of range")
		return
	}

	scale := (req.Width - h.conf.Padding) / doc.PageWidth * req.Zoom
	start = time.Now()
	img, err := h.rasterizer.Rasterize(c.Request.Context(), doc, req.Page, scale)
	if err != nil {
		log.Error("rasterize preview failed", slog.Any("error", err))
		Internal(c, "failed to rasterize preview")
		return
	}
	metrics.ObserveRender("rasterize", template, time.Since(start))

	c.Status(http.StatusOK)
	c.Header("Content-Type", "image/png")
	if err := png.Encode(c.Writer, img); err != nil {
		log.Error("write preview png failed", slog.Any("error", err))
	}
}

// ListTemplates 返回已注册的模板名称。
func (h *RenderHandler) ListTemplates(c *gin.Context) {
	names := pdf.TemplateNames()
	sort.Strings(names)
	c.JSON(http.StatusOK, gin.H{"templates": names})
}
