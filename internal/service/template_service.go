package service

import (
	"errors"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/repository"
	"studycoach_backend/internal/util"

	"gorm.io/gorm"
)

// TemplateService 老师的可复用任务包
type TemplateService struct {
	Repo *repository.TemplateRepository
}

func NewTemplateService(repo *repository.TemplateRepository) *TemplateService {
	return &TemplateService{Repo: repo}
}

type TemplateItemRequest struct {
	CatalogID      *uint  `json:"catalogId"`
	ExamSystem     string `json:"examSystem" binding:"required"`
	Module         string `json:"module" binding:"required"`
	TaskName       string `json:"taskName" binding:"required"`
	Instructions   string `json:"instructions"`
	DefaultMinutes int    `json:"defaultMinutes"`
	EvidencePolicy string `json:"evidencePolicy"`
}

type CreateTemplateRequest struct {
	Name              string                `json:"name" binding:"required"`
	Description       string                `json:"description"`
	DefaultRecurrence string                `json:"defaultRecurrence"`
	Items             []TemplateItemRequest `json:"items" binding:"required"`
}

func (s *TemplateService) Create(claims *util.Claims, req *CreateTemplateRequest) (*model.PlanTemplate, error) {
	if len(req.Items) == 0 {
		return nil, util.ErrInvalidStatus
	}

	template := &model.PlanTemplate{
		Name:              req.Name,
		Description:       req.Description,
		CreatorID:         claims.UserID,
		IsActive:          true,
		DefaultRecurrence: req.DefaultRecurrence,
	}
	if template.DefaultRecurrence == "" {
		template.DefaultRecurrence = "once"
	}

	for i, item := range req.Items {
		template.Items = append(template.Items, model.PlanTemplateItem{
			CatalogID:      item.CatalogID,
			ExamSystem:     item.ExamSystem,
			Module:         item.Module,
			TaskName:       item.TaskName,
			Instructions:   item.Instructions,
			DefaultMinutes: item.DefaultMinutes,
			OrderIndex:     i,
			EvidencePolicy: model.ValidEvidencePolicy(item.EvidencePolicy),
		})
	}

	if err := s.Repo.CreateWithItems(template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *TemplateService) Get(claims *util.Claims, id uint) (*model.PlanTemplate, error) {
	template, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if template.CreatorID != claims.UserID && claims.Role != model.Admin {
		return nil, util.ErrForbidden
	}
	return template, nil
}

func (s *TemplateService) ListMine(claims *util.Claims) ([]*model.PlanTemplate, error) {
	return s.Repo.ListByCreator(claims.UserID)
}

func (s *TemplateService) Delete(claims *util.Claims, id uint) error {
	template, err := s.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if template.CreatorID != claims.UserID && claims.Role != model.Admin {
		return util.ErrForbidden
	}
	return s.Repo.Delete(id)
}
