package model

import (
	"time"
)

// ScoreRecord 测评成绩，用于周报里关联投入与产出
type ScoreRecord struct {
	BaseModel
	StudentID      uint      `gorm:"index;not null" json:"studentId"`
	ExamSystem     string    `gorm:"size:32;not null;index" json:"examSystem"`
	AssessmentName string    `gorm:"size:128;not null" json:"assessmentName"`
	TakenOn        time.Time `gorm:"type:date;not null;index" json:"takenOn"`
	TotalScore     float64   `json:"totalScore"`
	// {"listening": 6.5, "reading": 7.0, ...}
	ComponentScores string `gorm:"type:json" json:"componentScores,omitempty"`
	Notes           string `gorm:"type:text" json:"notes,omitempty"`
	RecordedBy      uint   `gorm:"not null" json:"recordedBy"`
}

func (ScoreRecord) TableName() string {
	return "score_records"
}
