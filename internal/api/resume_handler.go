package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"openResume/internal/api/middleware"
	"openResume/internal/database"
	"openResume/internal/resume"
	"openResume/internal/tasks"
)

// ObjectStore 是简历处理器需要的最小存储能力，便于测试替换。
type ObjectStore interface {
	GenerateDownloadURL(ctx context.Context, objectKey, filename string, duration time.Duration) (string, error)
	DeleteObject(ctx context.Context, objectKey string) error
}

// ResumeHandler 负责处理简历文档的增删改查与导出入队。
type ResumeHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
	store       ObjectStore
	logger      *slog.Logger
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(db *gorm.DB, asynqClient *asynq.Client, store ObjectStore, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{
		db:          db,
		asynqClient: asynqClient,
		store:       store,
		logger:      logger,
	}
}

var errInvalidResumeID = errors.New("invalid resume id")

type saveResumeRequest struct {
	Title   string         `json:"title" binding:"required"`
	Content datatypes.JSON `json:"content" binding:"required"`
}

type resumeListItem struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Template  string    `json:"template"`
	Status    string    `json:"status,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type resumeResponse struct {
	ID        uint           `json:"id"`
	Title     string         `json:"title"`
	Content   datatypes.JSON `json:"content"`
	Template  string         `json:"template"`
	Status    string         `json:"status,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func newResumeResponse(row database.Resume) resumeResponse {
	return resumeResponse{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		Template:  row.Template,
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

// CreateResume 保存一份新的简历。Content 必须是合法的内容快照，
// 模板名取自快照 metadata，未注册的模板在渲染时会落到错误页。
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	var req saveResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	snapshot, err := decodeSnapshot(req.Content)
	if err != nil {
		BadRequest(c, "invalid resume content: "+err.Error())
		return
	}

	row := database.Resume{
		Title:    req.Title,
		Content:  req.Content,
		Template: snapshot.Metadata.Template,
		OwnerID:  userID,
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Create(&row).Error; err != nil {
		Internal(c, "failed to create resume")
		return
	}

	c.JSON(http.StatusCreated, newResumeResponse(row))
}

// GetLatestResume 返回用户最近更新的简历，没有时返回默认内容。
func (h *ResumeHandler) GetLatestResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var row database.Resume
	err := h.db.WithContext(c.Request.Context()).
		Where("owner_id = ?", userID).
		Order("updated_at desc").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, resumeResponse{
				Title:    defaultResumeTitle,
				Content:  defaultResumeContent(),
				Template: "modern",
			})
			return
		}
		Internal(c, "failed to query latest resume")
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(row))
}

// ListResumes 列出用户全部简历。
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var rows []database.Resume
	if err := h.db.WithContext(c.Request.Context()).
		Where("owner_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		Internal(c, "failed to list resumes")
		return
	}

	items := make([]resumeListItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, resumeListItem{
			ID:        r.ID,
			Title:     r.Title,
			Template:  r.Template,
			Status:    r.Status,
			UpdatedAt: r.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, items)
}

// GetResume 返回指定 ID 的简历。
func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*row))
}

// UpdateResume 覆盖指定简历的标题与内容快照。
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	var req saveResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	snapshot, err := decodeSnapshot(req.Content)
	if err != nil {
		BadRequest(c, "invalid resume content: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	updates := map[string]any{
		"title":    req.Title,
		"content":  req.Content,
		"template": snapshot.Metadata.Template,
	}
	if err := h.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		Internal(c, "failed to update resume")
		return
	}
	if err := h.db.WithContext(ctx).First(row, row.ID).Error; err != nil {
		Internal(c, "failed to reload resume")
		return
	}

	c.JSON(http.StatusOK, newResumeResponse(*row))
}

// DeleteResume 删除指定简历，并连带清理已导出的 PDF 与缩略图。
func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	ctx := c.Request.Context()
	row, err := h.getResumeForUser(ctx, c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	if err := h.db.WithContext(ctx).Delete(&database.Resume{}, row.ID).Error; err != nil {
		Internal(c, "failed to delete resume")
		return
	}

	// 对象删除失败不影响请求结果，对象不存在时删除是幂等的。
	for _, key := range []string{row.PdfKey, row.PreviewKey} {
		if key == "" {
			continue
		}
		if err := h.store.DeleteObject(ctx, key); err != nil {
			h.logger.Warn("failed to remove stored object",
				"resume_id", row.ID, "object_key", key, "error", err)
		}
	}

	c.Status(http.StatusNoContent)
}

// ExportResume 将导出任务入队并立即返回 202，结果通过 WebSocket 通知。
func (h *ResumeHandler) ExportResume(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewExportRenderTask(row.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	if err != nil {
		Internal(c, "failed to enqueue export")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).
		Model(row).Update("status", database.StatusPending).Error; err != nil {
		Internal(c, "failed to mark resume pending")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "export request accepted",
		"task_id": info.ID,
	})
}

// GetDownloadLink 生成简历 PDF 的预签名下载链接。
func (h *ResumeHandler) GetDownloadLink(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	row, err := h.getResumeForUser(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondResumeLookupError(c, err)
		return
	}

	if row.PdfKey == "" {
		Conflict(c, "pdf not ready")
		return
	}

	snapshot, err := decodeSnapshot(row.Content)
	filename := "resume.pdf"
	if err == nil && snapshot.Personal.FullName != "" {
		filename = snapshot.Personal.FullName + ".pdf"
	}

	signedURL, err := h.store.GenerateDownloadURL(c.Request.Context(), row.PdfKey, filename, 5*time.Minute)
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

func (h *ResumeHandler) getResumeForUser(ctx context.Context, idParam string, userID uint) (*database.Resume, error) {
	resumeID, err := strconv.ParseUint(idParam, 10, 64)
	if err != nil {
		return nil, errInvalidResumeID
	}

	var row database.Resume
	if err := h.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", uint(resumeID), userID).
		First(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}

func respondResumeLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidResumeID):
		BadRequest(c, "invalid resume id")
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "resume not found")
	default:
		Internal(c, "failed to query resume")
	}
}

func decodeSnapshot(content datatypes.JSON) (*resume.Resume, error) {
	var snapshot resume.Resume
	if err := json.Unmarshal(content, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	case uint64:
		return uint(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint(v), true
	default:
		return 0, false
	}
}

const defaultResumeTitle = "我的第一份简历"

// defaultResumeContent 返回新用户看到的初始内容快照。
func defaultResumeContent() datatypes.JSON {
	doc := resume.Resume{
		Metadata: resume.Metadata{Template: "modern"},
		Personal: resume.PersonalInfo{
			FullName: "你的名字",
			JobTitle: "你的职位/头衔",
			Details: []resume.Item{
				resume.NewStringItem("contact-phone", resume.TypePhone, "123-456-7890"),
				resume.NewStringItem("contact-email", resume.TypeEmail, "hello@example.com"),
			},
		},
		Sections: []resume.Section{
			{
				ID: "section-experience", Title: "工作经历", Visible: true,
				Content: resume.SectionContent{
					ID: "section-experience-content", Layout: resume.LayoutList,
					Items: []resume.Item{
						resume.NewStringItem("exp-heading", resume.TypeHeading, "公司名称"),
						resume.NewDateRangeItem("exp-range", resume.DateRangeValue{StartDate: "2023-01"}),
						resume.NewStringItem("exp-bullet", resume.TypeBullet, "在这里描述你的工作内容"),
					},
				},
			},
		},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(data)
}
