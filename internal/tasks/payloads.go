package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeExportRender = "export:render"
)

// ExportRenderPayload 描述一次简历导出所需的最小信息。
type ExportRenderPayload struct {
	ResumeID      uint   `json:"resume_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewExportRenderTask 构造一个新的简历导出任务。
func NewExportRenderTask(id uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(ExportRenderPayload{
		ResumeID:      id,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeExportRender, payload), nil
}
