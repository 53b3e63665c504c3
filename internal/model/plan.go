package model

import (
	"time"
)

type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanPublished PlanStatus = "published"
	PlanLocked    PlanStatus = "locked"
)

type StudentStatus string

const (
	StudentPending    StudentStatus = "pending"
	StudentInProgress StudentStatus = "in_progress"
	StudentSubmitted  StudentStatus = "submitted"
)

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewPartial  ReviewStatus = "partial"
	ReviewRejected ReviewStatus = "rejected"
)

// IsTerminal 判断是否为评审终态
func (s ReviewStatus) IsTerminal() bool {
	return s == ReviewApproved || s == ReviewPartial || s == ReviewRejected
}

type EvidencePolicy string

const (
	EvidenceOptional EvidencePolicy = "optional"
	EvidenceText     EvidencePolicy = "text"
	EvidenceImage    EvidencePolicy = "image"
	EvidenceAudio    EvidencePolicy = "audio"
	EvidenceRequired EvidencePolicy = "required" // 任意类型，但至少一条
)

// ValidEvidencePolicy 非法取值回落到 optional
func ValidEvidencePolicy(raw string) EvidencePolicy {
	switch EvidencePolicy(raw) {
	case EvidenceText, EvidenceImage, EvidenceAudio, EvidenceRequired:
		return EvidencePolicy(raw)
	}
	return EvidenceOptional
}

// StudyPlan 老师为学生制定的单日学习计划
// 同一学生同一天最多一份计划，唯一键兜底并发创建
// swagger:model StudyPlan
type StudyPlan struct {
	BaseModel
	StudentID   uint       `gorm:"uniqueIndex:uq_plan_student_date;not null" json:"studentId"`
	PlanDate    time.Time  `gorm:"type:date;uniqueIndex:uq_plan_student_date;not null" json:"planDate"`
	Status      PlanStatus `gorm:"size:20;default:'draft';index" json:"status"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	TemplateID  *uint      `json:"templateId,omitempty"`
	CreatedBy   uint       `gorm:"not null" json:"createdBy"`
	PublishedBy *uint      `json:"publishedBy,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Items       []PlanItem `gorm:"foreignKey:PlanID" json:"items,omitempty"`
}

func (StudyPlan) TableName() string {
	return "study_plans"
}

// PlanItem 计划中的单个任务项，自身承载学生状态、计时累计、证据与评审结果
// swagger:model PlanItem
type PlanItem struct {
	BaseModel
	PlanID    uint  `gorm:"index;not null" json:"planId"`
	CatalogID *uint `json:"catalogId,omitempty"`

	ExamSystem   string `gorm:"size:32;not null;index" json:"examSystem"`
	Module       string `gorm:"size:32;not null;index" json:"module"`
	TaskName     string `gorm:"size:64;not null" json:"taskName"`
	CustomTitle  string `gorm:"size:128" json:"customTitle,omitempty"`
	Instructions string `gorm:"type:text" json:"instructions,omitempty"`
	OrderIndex   int    `gorm:"default:0;not null" json:"orderIndex"`
	Superseded   bool   `gorm:"default:false;not null" json:"superseded"`

	PlannedMinutes int `gorm:"default:0;not null" json:"plannedMinutes"`
	// 已关闭计时段的累计秒数；除重置外单调不减
	ActualSeconds int `gorm:"default:0;not null" json:"actualSeconds"`
	ManualMinutes int `gorm:"default:0;not null" json:"manualMinutes"`

	StudentStatus  StudentStatus `gorm:"size:20;default:'pending'" json:"studentStatus"`
	StudentComment string        `gorm:"size:255" json:"studentComment,omitempty"`
	SubmittedAt    *time.Time    `json:"submittedAt,omitempty"`

	ReviewStatus      ReviewStatus `gorm:"size:20;default:'pending';index" json:"reviewStatus"`
	ReviewComment     string       `gorm:"size:255" json:"reviewComment,omitempty"`
	ReviewBy          *uint        `json:"reviewBy,omitempty"`
	ReviewAt          *time.Time   `json:"reviewAt,omitempty"`
	Locked            bool         `gorm:"default:false;not null" json:"locked"`
	StudentResetCount int          `gorm:"default:0;not null" json:"studentResetCount"`

	EvidencePolicy EvidencePolicy `gorm:"size:20;default:'optional';index" json:"evidencePolicy"`

	Sessions  []TimerSession `gorm:"foreignKey:PlanItemID" json:"sessions,omitempty"`
	Evidences []Evidence     `gorm:"foreignKey:PlanItemID" json:"evidence,omitempty"`
}

func (PlanItem) TableName() string {
	return "plan_items"
}
