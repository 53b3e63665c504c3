package repository

import (
	"studycoach_backend/internal/model"

	"gorm.io/gorm"
)

type EvidenceRepository struct {
	DB *gorm.DB
}

func NewEvidenceRepository(db *gorm.DB) *EvidenceRepository {
	return &EvidenceRepository{DB: db}
}

func (r *EvidenceRepository) Create(evidence *model.Evidence) error {
	return r.DB.Create(evidence).Error
}

func (r *EvidenceRepository) FindByID(id uint) (*model.Evidence, error) {
	var evidence model.Evidence
	err := r.DB.First(&evidence, id).Error
	return &evidence, err
}

func (r *EvidenceRepository) ListByItem(itemID uint) ([]*model.Evidence, error) {
	var evidences []*model.Evidence
	err := r.DB.Where("plan_item_id = ?", itemID).
		Order("created_at").
		Find(&evidences).Error
	return evidences, err
}

// CountLiveByItem 未删除证据数，可按类型过滤（kind 为空表示全部）
func (r *EvidenceRepository) CountLiveByItem(itemID uint, kind model.EvidenceKind) (int64, error) {
	var count int64
	query := r.DB.Model(&model.Evidence{}).Where("plan_item_id = ?", itemID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *EvidenceRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Evidence{}, id).Error
}
