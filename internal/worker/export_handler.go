package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"openResume/internal/database"
	"openResume/internal/errcode"
	"openResume/internal/export"
	"openResume/internal/metrics"
	"openResume/internal/pdf"
	"openResume/internal/preview"
	"openResume/internal/resume"
	"openResume/internal/storage"
	"openResume/internal/tasks"
)

// 缩略图按 595pt 页宽缩到约 300px。
const thumbnailScale = 0.5

// ExportTaskHandler 负责消费简历导出任务：渲染、编码、校验、上传、
// 更新数据库并通过 Redis 通知前端。
type ExportTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	rasterizer  *preview.ImageRasterizer
	logger      *slog.Logger
}

// NewExportTaskHandler 创建任务处理器。
func NewExportTaskHandler(
	db *gorm.DB,
	storageClient *storage.Client,
	redisClient *redis.Client,
	logger *slog.Logger,
) (*ExportTaskHandler, error) {
	rasterizer, err := preview.NewImageRasterizer()
	if err != nil {
		return nil, fmt.Errorf("init rasterizer: %w", err)
	}
	return &ExportTaskHandler{
		db:          db,
		storage:     storageClient,
		redisClient: redisClient,
		rasterizer:  rasterizer,
		logger:      logger,
	}, nil
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.ExportRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("resume_id", int(payload.ResumeID)),
	)
	log.Info("starting resume export task")

	var row database.Resume
	if err := h.db.WithContext(ctx).First(&row, payload.ResumeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("resume not found, skipping task")
			return nil
		}
		log.Error("query resume failed", slog.Any("error", err))
		return err
	}

	log = log.With(slog.Uint64("owner_id", uint64(row.OwnerID)))

	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		_ = h.db.WithContext(ctx).Model(&row).Update("status", database.StatusFailed).Error
		notify := ExportNotifyMessage{
			Status:        "error",
			ResumeID:      row.ID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  strings.TrimSpace(retErr.Error()),
		}
		if err := h.publishNotify(ctx, row.OwnerID, notify); err != nil {
			log.Error("publish export error notification failed", slog.Any("error", err))
		}
	}()

	if err := h.db.WithContext(ctx).Model(&row).Update("status", database.StatusProcessing).Error; err != nil {
		log.Error("mark resume processing failed", slog.Any("error", err))
		return err
	}

	var snapshot resume.Resume
	if err := json.Unmarshal(row.Content, &snapshot); err != nil {
		log.Error("decode resume content failed", slog.Any("error", err))
		return fmt.Errorf("decode resume content: %w", err)
	}

	start := time.Now()
	artifact, err := export.Export(ctx, &snapshot, row.Template, resume.Translations{}.Get)
	if err != nil {
		log.Error("export resume failed", slog.Any("error", err))
		return err
	}
	metrics.ObserveRender("generate", row.Template, time.Since(start))

	pdfKey := fmt.Sprintf("generated-resumes/%d/%s.pdf", row.OwnerID, uuid.NewString())
	pdfReader := bytes.NewReader(artifact.Data)
	if _, err := h.storage.UploadFile(ctx, pdfKey, pdfReader, int64(len(artifact.Data)), "application/pdf"); err != nil {
		log.Error("upload pdf failed", slog.Any("error", err))
		return err
	}

	previewKey, err := h.uploadThumbnail(ctx, &row, &snapshot)
	if err != nil {
		// 缩略图失败不中断导出。
		log.Warn("generate resume thumbnail failed", slog.Any("error", err))
	}

	update := map[string]any{
		"pdf_key": pdfKey,
		"status":  database.StatusCompleted,
	}
	if previewKey != "" {
		update["preview_key"] = previewKey
	}
	if err := h.db.WithContext(ctx).Model(&row).Updates(update).Error; err != nil {
		log.Error("update resume failed", slog.Any("error", err))
		return err
	}

	notify := ExportNotifyMessage{
		Status:        "completed",
		ResumeID:      row.ID,
		CorrelationID: payload.CorrelationID,
		ErrorCode:     errcode.OK,
		DownloadKey:   pdfKey,
		PreviewKey:    previewKey,
	}
	if _, err := pdf.ResolveTemplate(row.Template); err != nil {
		// 渲染已用错误页兜底，但要把模板缺失告知前端。
		notify.ErrorCode = errcode.TemplateNotFound
		notify.ErrorMessage = fmt.Sprintf("template %q is not registered, rendered fallback page", row.Template)
		log.Warn("exported with missing template", slog.String("template", row.Template))
	}
	if err := h.publishNotify(ctx, row.OwnerID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	log.Info("resume export task completed")
	return nil
}

// uploadThumbnail 光栅化第一页并上传 PNG 缩略图。
func (h *ExportTaskHandler) uploadThumbnail(ctx context.Context, row *database.Resume, snapshot *resume.Resume) (string, error) {
	start := time.Now()
	doc := pdf.Generate(snapshot, row.Template, resume.Translations{}.Get)
	img, err := h.rasterizer.Rasterize(ctx, doc, 0, thumbnailScale)
	if err != nil {
		return "", fmt.Errorf("rasterize thumbnail: %w", err)
	}
	metrics.ObserveRender("rasterize", row.Template, time.Since(start))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode thumbnail png: %w", err)
	}

	previewKey := fmt.Sprintf("thumbnails/resume/%d/preview.png", row.ID)
	if _, err := h.storage.UploadFile(ctx, previewKey, &buf, int64(buf.Len()), "image/png"); err != nil {
		return "", fmt.Errorf("upload thumbnail: %w", err)
	}
	return previewKey, nil
}

func (h *ExportTaskHandler) publishNotify(ctx context.Context, ownerID uint, notify ExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", ownerID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
