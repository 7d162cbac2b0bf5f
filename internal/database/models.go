package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Resume 表示一份持久化的简历文档。Content 存储完整的内容快照
// （metadata + personal + sections），结构见 internal/resume。
// OwnerID 来自外部身份服务签发的令牌，本服务不维护账号表。
type Resume struct {
	gorm.Model
	Title      string         `gorm:"size:255"`
	Content    datatypes.JSON `gorm:"type:jsonb"`
	Template   string         `gorm:"size:64"`
	OwnerID    uint           `gorm:"index"`
	PdfKey     string         `gorm:"size:512"`
	PreviewKey string         `gorm:"size:512"`
	Status     string         `gorm:"size:32"`
}

// 导出任务的状态流转：pending → processing → completed | failed。
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
