package model

import (
	"time"
)

type ReviewOrigin string

const (
	OriginManual ReviewOrigin = "manual"
	OriginBulk   ReviewOrigin = "bulk"
	OriginAdmin  ReviewOrigin = "admin"
)

// ReviewLog 评审审计记录，只追加，永不更新或删除
type ReviewLog struct {
	ID             uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt      time.Time    `json:"createdAt"`
	PlanItemID     uint         `gorm:"index;not null" json:"planItemId"`
	ReviewerID     uint         `gorm:"not null" json:"reviewerId"`
	FromStatus     ReviewStatus `gorm:"size:20" json:"fromStatus"`
	ToStatus       ReviewStatus `gorm:"size:20;not null" json:"toStatus"`
	Comment        string       `gorm:"size:255" json:"comment,omitempty"`
	DecidedAt      time.Time    `gorm:"not null" json:"decidedAt"`
	OriginatedFrom ReviewOrigin `gorm:"size:32;default:'manual'" json:"originatedFrom"`
}

func (ReviewLog) TableName() string {
	return "plan_review_logs"
}
