package model

import (
	"time"
)

// TimerSession 学生针对某计划项的一段连续计时
// 采用只追加的闭区间记录：关闭时一次性把时长累加到计划项，
// 并发或重试的关闭不会造成重复累加
type TimerSession struct {
	BaseModel
	PlanItemID      uint       `gorm:"index;not null" json:"planItemId"`
	StartedAt       time.Time  `gorm:"not null" json:"startedAt"`
	EndedAt         *time.Time `json:"endedAt,omitempty"`
	DurationSeconds int        `gorm:"default:0;not null" json:"durationSeconds"`
	CreatedBy       uint       `gorm:"not null" json:"createdBy"`
	Source          string     `gorm:"size:32;default:'timer'" json:"source"` // timer / manual
	DeviceInfo      string     `gorm:"size:128" json:"deviceInfo,omitempty"`
}

func (TimerSession) TableName() string {
	return "plan_item_sessions"
}

// Open 是否仍在计时
func (s *TimerSession) Open() bool {
	return s.EndedAt == nil
}
