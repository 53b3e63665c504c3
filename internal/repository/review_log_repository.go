package repository

import (
	"studycoach_backend/internal/model"

	"gorm.io/gorm"
)

type ReviewLogRepository struct {
	DB *gorm.DB
}

func NewReviewLogRepository(db *gorm.DB) *ReviewLogRepository {
	return &ReviewLogRepository{DB: db}
}

func (r *ReviewLogRepository) ListByItem(itemID uint) ([]*model.ReviewLog, error) {
	var logs []*model.ReviewLog
	err := r.DB.Where("plan_item_id = ?", itemID).
		Order("created_at").
		Find(&logs).Error
	return logs, err
}

func (r *ReviewLogRepository) ListByReviewer(reviewerID uint, limit int) ([]*model.ReviewLog, error) {
	var logs []*model.ReviewLog
	err := r.DB.Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
