package model

// PlanTemplate 可复用的任务包（如 雅思听力日常包）
type PlanTemplate struct {
	BaseModel
	Name              string             `gorm:"size:128;not null" json:"name"`
	Description       string             `gorm:"type:text" json:"description,omitempty"`
	CreatorID         uint               `gorm:"index" json:"creatorId"`
	IsActive          bool               `gorm:"default:true;not null" json:"isActive"`
	DefaultRecurrence string             `gorm:"size:32;default:'once'" json:"defaultRecurrence"` // once / daily / weekdays / custom
	Items             []PlanTemplateItem `gorm:"foreignKey:TemplateID" json:"items,omitempty"`
}

func (PlanTemplate) TableName() string {
	return "plan_templates"
}

// PlanTemplateItem 模板内的任务项，保留顺序和默认值
type PlanTemplateItem struct {
	BaseModel
	TemplateID     uint           `gorm:"index;not null" json:"templateId"`
	CatalogID      *uint          `json:"catalogId,omitempty"`
	ExamSystem     string         `gorm:"size:32;not null" json:"examSystem"`
	Module         string         `gorm:"size:32;not null" json:"module"`
	TaskName       string         `gorm:"size:64;not null" json:"taskName"`
	Instructions   string         `gorm:"type:text" json:"instructions,omitempty"`
	DefaultMinutes int            `gorm:"default:0;not null" json:"defaultMinutes"`
	OrderIndex     int            `gorm:"default:0;not null" json:"orderIndex"`
	EvidencePolicy EvidencePolicy `gorm:"size:20;default:'optional'" json:"evidencePolicy"`
}

func (PlanTemplateItem) TableName() string {
	return "plan_template_items"
}
