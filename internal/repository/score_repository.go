package repository

import (
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"gorm.io/gorm"
)

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

func (r *ScoreRepository) Create(record *model.ScoreRecord) error {
	return r.DB.Create(record).Error
}

func (r *ScoreRepository) ListByStudent(studentID uint, limit int) ([]*model.ScoreRecord, error) {
	var records []*model.ScoreRecord
	err := r.DB.Where("student_id = ?", studentID).
		Order("taken_on DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (r *ScoreRepository) ListByStudentAndRange(studentID uint, from, to time.Time) ([]*model.ScoreRecord, error) {
	var records []*model.ScoreRecord
	err := r.DB.Where("student_id = ? AND taken_on >= ? AND taken_on <= ?",
		studentID, from.Format(util.DateFormat), to.Format(util.DateFormat)).
		Order("taken_on").
		Find(&records).Error
	return records, err
}

func (r *ScoreRepository) Delete(id uint) error {
	return r.DB.Delete(&model.ScoreRecord{}, id).Error
}
