package service

import (
	"errors"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"
	"studycoach_backend/pkg/logger"
	"studycoach_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReviewItemStore interface {
	FindItemWithPlan(itemID uint) (*model.PlanItem, *model.StudyPlan, error)
	ApplyReview(itemID, reviewerID uint, from, to model.ReviewStatus, comment string, origin model.ReviewOrigin, at time.Time, override bool) error
}

type ReviewLogStore interface {
	ListByItem(itemID uint) ([]*model.ReviewLog, error)
}

// ReviewService 评审：每项一锤定音。
// 评审结论写入与审计记录在同一事务；并发评审只有一人成功
type ReviewService struct {
	Access *AccessService
	Items  ReviewItemStore
	Logs   ReviewLogStore
	Now    func() time.Time
}

func NewReviewService(access *AccessService, items ReviewItemStore, logs ReviewLogStore) *ReviewService {
	return &ReviewService{
		Access: access,
		Items:  items,
		Logs:   logs,
		Now:    time.Now,
	}
}

type ReviewRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// Review 对已提交的项落评审结论，成功后该项锁定
func (s *ReviewService) Review(claims *util.Claims, itemID uint, req *ReviewRequest) error {
	to := model.ReviewStatus(req.Status)
	if !to.IsTerminal() {
		return util.ErrInvalidStatus
	}

	item, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if err := s.Access.RequireCoach(claims, plan.StudentID); err != nil {
		return err
	}
	if item.Locked || item.ReviewStatus.IsTerminal() {
		return util.ErrAlreadyLocked
	}
	if item.StudentStatus != model.StudentSubmitted {
		return util.ErrInvalidStatus
	}

	if err := s.Items.ApplyReview(itemID, claims.UserID, item.ReviewStatus, to, req.Comment, model.OriginManual, s.Now(), false); err != nil {
		return err
	}

	monitoring.ReviewCounter.WithLabelValues(string(to), string(model.OriginManual)).Inc()
	logger.Log.Info("plan item reviewed",
		zap.Uint("itemId", itemID),
		zap.Uint("reviewerId", claims.UserID),
		zap.String("status", string(to)))
	return nil
}

type BulkReviewRequest struct {
	ItemIDs []uint `json:"itemIds" binding:"required"`
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

type BulkReviewResult struct {
	ItemID uint   `json:"itemId"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// BulkReview 批量评审：逐项独立落锤，单项失败不影响其余
func (s *ReviewService) BulkReview(claims *util.Claims, req *BulkReviewRequest) ([]BulkReviewResult, error) {
	to := model.ReviewStatus(req.Status)
	if !to.IsTerminal() {
		return nil, util.ErrInvalidStatus
	}

	results := make([]BulkReviewResult, 0, len(req.ItemIDs))
	for _, itemID := range req.ItemIDs {
		err := s.reviewOne(claims, itemID, to, req.Comment)
		result := BulkReviewResult{ItemID: itemID, OK: err == nil}
		if err != nil {
			result.Error = util.ErrorCode(err)
		} else {
			monitoring.ReviewCounter.WithLabelValues(string(to), string(model.OriginBulk)).Inc()
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *ReviewService) reviewOne(claims *util.Claims, itemID uint, to model.ReviewStatus, comment string) error {
	item, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}
	if err := s.Access.RequireCoach(claims, plan.StudentID); err != nil {
		return err
	}
	if item.Locked || item.ReviewStatus.IsTerminal() {
		return util.ErrAlreadyLocked
	}
	if item.StudentStatus != model.StudentSubmitted {
		return util.ErrInvalidStatus
	}
	return s.Items.ApplyReview(itemID, claims.UserID, item.ReviewStatus, to, comment, model.OriginBulk, s.Now(), false)
}

// Override 管理员改判：绕过锁定重写结论，审计日志照常追加
func (s *ReviewService) Override(claims *util.Claims, itemID uint, req *ReviewRequest) error {
	if claims == nil || claims.Role != model.Admin {
		return util.ErrForbidden
	}
	to := model.ReviewStatus(req.Status)
	if !to.IsTerminal() {
		return util.ErrInvalidStatus
	}

	item, _, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotFound
		}
		return err
	}

	if err := s.Items.ApplyReview(itemID, claims.UserID, item.ReviewStatus, to, req.Comment, model.OriginAdmin, s.Now(), true); err != nil {
		return err
	}

	monitoring.ReviewCounter.WithLabelValues(string(to), string(model.OriginAdmin)).Inc()
	logger.Log.Warn("review overridden by admin",
		zap.Uint("itemId", itemID),
		zap.Uint("adminId", claims.UserID),
		zap.String("from", string(item.ReviewStatus)),
		zap.String("to", string(to)))
	return nil
}

// History 某项的完整评审轨迹
func (s *ReviewService) History(claims *util.Claims, itemID uint) ([]*model.ReviewLog, error) {
	_, plan, err := s.Items.FindItemWithPlan(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, err
	}
	if err := s.Access.AuthorizeStudent(claims, plan.StudentID); err != nil {
		return nil, err
	}
	return s.Logs.ListByItem(itemID)
}
