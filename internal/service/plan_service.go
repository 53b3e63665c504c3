package service

import (
	"errors"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"
	"studycoach_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlanStore 计划持久化接口，核心服务只依赖接口便于单测
type PlanStore interface {
	CreateWithItems(plan *model.StudyPlan) error
	FindByID(id uint) (*model.StudyPlan, error)
	FindByIDFull(id uint) (*model.StudyPlan, error)
	FindByStudentAndDate(studentID uint, date time.Time) (*model.StudyPlan, error)
	ListByStudentAndRange(studentID uint, from, to time.Time) ([]*model.StudyPlan, error)
	ReplaceItems(plan *model.StudyPlan, items []model.PlanItem) error
	Publish(planID, publisherID uint, at time.Time) error
	UpdateStatus(planID uint, status model.PlanStatus) error
	Delete(planID uint) error
	LockStalePlans(before time.Time) (int64, error)
}

type CatalogReader interface {
	FindByID(id uint) (*model.CatalogEntry, error)
}

type TemplateReader interface {
	FindByID(id uint) (*model.PlanTemplate, error)
}

type PlanService struct {
	Access    *AccessService
	Plans     PlanStore
	Catalog   CatalogReader
	Templates TemplateReader
	Now       func() time.Time
}

func NewPlanService(access *AccessService, plans PlanStore, catalog CatalogReader, templates TemplateReader) *PlanService {
	return &PlanService{
		Access:    access,
		Plans:     plans,
		Catalog:   catalog,
		Templates: templates,
		Now:       time.Now,
	}
}

type PlanItemRequest struct {
	CatalogID      *uint  `json:"catalogId"`
	ExamSystem     string `json:"examSystem"`
	Module         string `json:"module"`
	TaskName       string `json:"taskName"`
	CustomTitle    string `json:"customTitle"`
	Instructions   string `json:"instructions"`
	PlannedMinutes int    `json:"plannedMinutes"`
	EvidencePolicy string `json:"evidencePolicy"`
}

type CreatePlanRequest struct {
	StudentID  uint              `json:"studentId" binding:"required"`
	PlanDate   string            `json:"planDate" binding:"required"`
	Notes      string            `json:"notes"`
	TemplateID *uint             `json:"templateId"`
	Items      []PlanItemRequest `json:"items"`
	Replace    bool              `json:"replace"`
	Publish    bool              `json:"publish"`
}

// buildItems 把请求项展开成计划项；引用了字典的项回填字典副本字段
func (s *PlanService) buildItems(reqs []PlanItemRequest) ([]model.PlanItem, error) {
	items := make([]model.PlanItem, 0, len(reqs))
	for i, req := range reqs {
		item := model.PlanItem{
			CatalogID:      req.CatalogID,
			ExamSystem:     req.ExamSystem,
			Module:         req.Module,
			TaskName:       req.TaskName,
			CustomTitle:    req.CustomTitle,
			Instructions:   req.Instructions,
			OrderIndex:     i,
			PlannedMinutes: req.PlannedMinutes,
			StudentStatus:  model.StudentPending,
			ReviewStatus:   model.ReviewPending,
			EvidencePolicy: model.ValidEvidencePolicy(req.EvidencePolicy),
		}

		if req.CatalogID != nil {
			entry, err := s.Catalog.FindByID(*req.CatalogID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, util.ErrNotFound
				}
				return nil, err
			}
			if item.ExamSystem == "" {
				item.ExamSystem = entry.ExamSystem
			}
			if item.Module == "" {
				item.Module = entry.Module
			}
			if item.TaskName == "" {
				item.TaskName = entry.TaskName
			}
			if item.PlannedMinutes == 0 {
				item.PlannedMinutes = entry.DefaultMinutes
			}
		}

		if item.ExamSystem == "" || item.Module == "" || item.TaskName == "" {
			return nil, util.ErrInvalidStatus
		}
		items = append(items, item)
	}
	return items, nil
}

// templateItems 模板展开为计划项请求，模板里的默认值照搬
func templateItems(template *model.PlanTemplate) []PlanItemRequest {
	reqs := make([]PlanItemRequest, 0, len(template.Items))
	for _, ti := range template.Items {
		reqs = append(reqs, PlanItemRequest{
			CatalogID:      ti.CatalogID,
			ExamSystem:     ti.ExamSystem,
			Module:         ti.Module,
			TaskName:       ti.TaskName,
			Instructions:   ti.Instructions,
			PlannedMinutes: ti.DefaultMinutes,
			EvidencePolicy: string(ti.EvidencePolicy),
		})
	}
	return reqs
}

// CreatePlan 为学生创建某天的计划。
// 同一学生同一天已有计划时：默认拒绝（plan_exists）；
// replace=true 则把旧项整体作废并替换，计时与证据随旧项一起冻结
func (s *PlanService) CreatePlan(claims *util.Claims, req *CreatePlanRequest) (*model.StudyPlan, error) {
	if err := s.Access.RequireCoach(claims, req.StudentID); err != nil {
		return nil, err
	}

	planDate, err := time.Parse(util.DateFormat, req.PlanDate)
	if err != nil {
		return nil, util.ErrInvalidStatus
	}

	itemReqs := req.Items
	if req.TemplateID != nil {
		template, err := s.Templates.FindByID(*req.TemplateID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrNotFound
			}
			return nil, err
		}
		itemReqs = append(templateItems(template), itemReqs...)
	}

	items, err := s.buildItems(itemReqs)
	if err != nil {
		return nil, err
	}

	status := model.PlanDraft
	if req.Publish {
		status = model.PlanPublished
	}

	existing, err := s.Plans.FindByStudentAndDate(req.StudentID, planDate)
	if err == nil {
		if !req.Replace {
			return nil, util.ErrDuplicatePlan
		}
		if existing.Status == model.PlanLocked {
			return nil, util.ErrAlreadyLocked
		}
		existing.Notes = req.Notes
		existing.TemplateID = req.TemplateID
		existing.Status = status
		if err := s.Plans.ReplaceItems(existing, items); err != nil {
			return nil, err
		}
		logger.Log.Info("plan replaced",
			zap.Uint("planId", existing.ID),
			zap.Uint("studentId", req.StudentID),
			zap.String("planDate", req.PlanDate),
			zap.Int("items", len(items)))
		return s.Plans.FindByID(existing.ID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := s.Now()
	plan := &model.StudyPlan{
		StudentID:  req.StudentID,
		PlanDate:   planDate,
		Status:     status,
		Notes:      req.Notes,
		TemplateID: req.TemplateID,
		CreatedBy:  claims.UserID,
		Items:      items,
	}
	if req.Publish {
		plan.PublishedBy = &claims.UserID
		plan.PublishedAt = &now
	}

	if err := s.Plans.CreateWithItems(plan); err != nil {
		return nil, err
	}
	logger.Log.Info("plan created",
		zap.Uint("planId", plan.ID),
		zap.Uint("studentId", req.StudentID),
		zap.String("planDate", req.PlanDate),
		zap.Int("items", len(items)))
	return plan, nil
}

// PublishPlan 草稿发布后学生才可见、可计时
func (s *PlanService) PublishPlan(claims *util.Claims, planID uint) (*model.StudyPlan, error) {
	plan, err := s.Plans.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if err := s.Access.RequireCoach(claims, plan.StudentID); err != nil {
		return nil, err
	}
	if err := s.Plans.Publish(planID, claims.UserID, s.Now()); err != nil {
		return nil, err
	}
	return s.Plans.FindByID(planID)
}

// LockPlan 整体锁定，计划变为只读
func (s *PlanService) LockPlan(claims *util.Claims, planID uint) error {
	plan, err := s.Plans.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if err := s.Access.RequireCoach(claims, plan.StudentID); err != nil {
		return err
	}
	if plan.Status != model.PlanPublished {
		return util.ErrInvalidStatus
	}
	return s.Plans.UpdateStatus(planID, model.PlanLocked)
}

// DeletePlan 删除当天计划，腾出重排的位置；锁定的计划只有管理员能删
func (s *PlanService) DeletePlan(claims *util.Claims, planID uint) error {
	plan, err := s.Plans.FindByID(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if err := s.Access.RequireCoach(claims, plan.StudentID); err != nil {
		return err
	}
	if plan.Status == model.PlanLocked && claims.Role != model.Admin {
		return util.ErrAlreadyLocked
	}
	return s.Plans.Delete(planID)
}

// GetPlan 带计时段和证据的完整视图；学生只能看到已发布的计划
func (s *PlanService) GetPlan(claims *util.Claims, planID uint) (*model.StudyPlan, error) {
	plan, err := s.Plans.FindByIDFull(planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if err := s.Access.AuthorizeStudent(claims, plan.StudentID); err != nil {
		return nil, err
	}
	if claims.Role == model.Student && plan.Status == model.PlanDraft {
		return nil, util.ErrNotFound
	}
	return plan, nil
}

// GetPlanByDate 学生端"今天的计划"入口
func (s *PlanService) GetPlanByDate(claims *util.Claims, studentID uint, date time.Time) (*model.StudyPlan, error) {
	if err := s.Access.AuthorizeStudent(claims, studentID); err != nil {
		return nil, err
	}
	plan, err := s.Plans.FindByStudentAndDate(studentID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if claims.Role == model.Student && plan.Status == model.PlanDraft {
		return nil, util.ErrNotFound
	}
	return plan, nil
}

func (s *PlanService) ListPlans(claims *util.Claims, studentID uint, from, to time.Time) ([]*model.StudyPlan, error) {
	if err := s.Access.AuthorizeStudent(claims, studentID); err != nil {
		return nil, err
	}
	plans, err := s.Plans.ListByStudentAndRange(studentID, from, to)
	if err != nil {
		return nil, err
	}
	if claims.Role == model.Student {
		visible := plans[:0]
		for _, p := range plans {
			if p.Status != model.PlanDraft {
				visible = append(visible, p)
			}
		}
		plans = visible
	}
	return plans, nil
}

// AutoLockSweep 后台任务：锁定超过保留期的已发布计划
func (s *PlanService) AutoLockSweep(afterDays int) {
	if afterDays <= 0 {
		return
	}
	cutoff := s.Now().AddDate(0, 0, -afterDays)
	n, err := s.Plans.LockStalePlans(cutoff)
	if err != nil {
		logger.Log.Error("auto lock sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Log.Info("auto locked stale plans", zap.Int64("count", n))
	}
}
