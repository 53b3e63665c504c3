package repository

import (
	"studycoach_backend/internal/model"

	"gorm.io/gorm"
)

type TemplateRepository struct {
	DB *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{DB: db}
}

func (r *TemplateRepository) CreateWithItems(template *model.PlanTemplate) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(template).Error
	})
}

func (r *TemplateRepository) FindByID(id uint) (*model.PlanTemplate, error) {
	var template model.PlanTemplate
	err := r.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index")
	}).First(&template, id).Error
	return &template, err
}

func (r *TemplateRepository) ListByCreator(creatorID uint) ([]*model.PlanTemplate, error) {
	var templates []*model.PlanTemplate
	err := r.DB.Where("creator_id = ?", creatorID).
		Order("updated_at DESC").
		Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&model.PlanTemplateItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.PlanTemplate{}, id).Error
	})
}
