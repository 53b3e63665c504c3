package model

type EvidenceKind string

const (
	EvidenceKindText     EvidenceKind = "text"
	EvidenceKindImage    EvidenceKind = "image"
	EvidenceKindAudio    EvidenceKind = "audio"
	EvidenceKindDocument EvidenceKind = "document"
)

// Evidence 学生提交的完成凭证（文字、图片、音频、文档）
// 只追加、软删除；一条计划项可以挂多条证据
type Evidence struct {
	BaseModel
	PlanItemID       uint         `gorm:"index;not null" json:"planItemId"`
	UploaderID       uint         `gorm:"not null" json:"uploaderId"`
	Kind             EvidenceKind `gorm:"size:20;not null" json:"kind"`
	StoragePath      string       `gorm:"size:256" json:"-"`
	OriginalFilename string       `gorm:"size:128" json:"originalFilename,omitempty"`
	FileSize         int64        `gorm:"default:0;not null" json:"fileSize"`
	Note             string       `gorm:"size:255" json:"note,omitempty"`
	TextContent      string       `gorm:"type:text" json:"textContent,omitempty"`
	AudioSeconds     float64      `gorm:"default:0" json:"audioSeconds,omitempty"`
}

func (Evidence) TableName() string {
	return "plan_evidences"
}
