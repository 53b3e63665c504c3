package model

// CatalogEntry 任务字典（考试体系 / 模块 / 具体任务）
// 计划项保存字典字段的副本，字典后续修改不影响历史计划
// swagger:model CatalogEntry
type CatalogEntry struct {
	BaseModel
	ExamSystem     string `gorm:"size:32;not null;index;uniqueIndex:uq_task_catalog" json:"examSystem"` // 基础/雅思/托福...
	Module         string `gorm:"size:32;not null;index;uniqueIndex:uq_task_catalog" json:"module"`     // 听力/阅读/口语/写作/词汇/语法
	TaskName       string `gorm:"size:64;not null;index;uniqueIndex:uq_task_catalog" json:"taskName"`
	Description    string `gorm:"type:text" json:"description,omitempty"`
	DefaultMinutes int    `gorm:"default:0;not null" json:"defaultMinutes"`
	IsActive       bool   `gorm:"default:true;not null" json:"isActive"`
	CreatedBy      uint   `json:"createdBy"`
}

func (CatalogEntry) TableName() string {
	return "task_catalog"
}
