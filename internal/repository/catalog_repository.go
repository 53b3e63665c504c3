package repository

import (
	"studycoach_backend/internal/model"

	"gorm.io/gorm"
)

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) Create(entry *model.CatalogEntry) error {
	return r.DB.Create(entry).Error
}

func (r *CatalogRepository) FindByID(id uint) (*model.CatalogEntry, error) {
	var entry model.CatalogEntry
	err := r.DB.First(&entry, id).Error
	return &entry, err
}

func (r *CatalogRepository) Update(entry *model.CatalogEntry) error {
	return r.DB.Save(entry).Error
}

func (r *CatalogRepository) Deactivate(id uint) error {
	return r.DB.Model(&model.CatalogEntry{}).
		Where("id = ?", id).
		Update("is_active", false).
		Error
}

func (r *CatalogRepository) ListActive() ([]*model.CatalogEntry, error) {
	var entries []*model.CatalogEntry
	err := r.DB.Where("is_active = ?", true).
		Order("exam_system, module, task_name").
		Find(&entries).Error
	return entries, err
}

func (r *CatalogRepository) ListAll() ([]*model.CatalogEntry, error) {
	var entries []*model.CatalogEntry
	err := r.DB.Order("exam_system, module, task_name").Find(&entries).Error
	return entries, err
}
