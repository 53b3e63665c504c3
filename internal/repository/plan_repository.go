package repository

import (
	"errors"
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"gorm.io/gorm"
)

type PlanRepository struct {
	DB *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{DB: db}
}

// CreateWithItems 唯一键 uq_plan_student_date 兜底并发创建：
// 两个请求同时通过存在性检查时，晚落库的一方拿到 plan_exists
func (r *PlanRepository) CreateWithItems(plan *model.StudyPlan) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(plan).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrDuplicatePlan
	}
	return err
}

func (r *PlanRepository) FindByID(id uint) (*model.StudyPlan, error) {
	var plan model.StudyPlan
	err := r.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Where("superseded = ?", false).Order("order_index")
	}).First(&plan, id).Error
	return &plan, err
}

func (r *PlanRepository) FindByIDFull(id uint) (*model.StudyPlan, error) {
	var plan model.StudyPlan
	err := r.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("superseded = ?", false).Order("order_index")
		}).
		Preload("Items.Sessions", func(db *gorm.DB) *gorm.DB {
			return db.Order("started_at")
		}).
		Preload("Items.Evidences").
		First(&plan, id).Error
	return &plan, err
}

// FindByStudentAndDate 仅查未删除的计划，同一学生同一天最多一份
func (r *PlanRepository) FindByStudentAndDate(studentID uint, date time.Time) (*model.StudyPlan, error) {
	var plan model.StudyPlan
	err := r.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Where("superseded = ?", false).Order("order_index")
	}).Where("student_id = ? AND plan_date = ?", studentID, date.Format(util.DateFormat)).
		First(&plan).Error
	return &plan, err
}

func (r *PlanRepository) ListByStudentAndRange(studentID uint, from, to time.Time) ([]*model.StudyPlan, error) {
	var plans []*model.StudyPlan
	err := r.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Where("superseded = ?", false).Order("order_index")
	}).Where("student_id = ? AND plan_date >= ? AND plan_date <= ?",
		studentID, from.Format(util.DateFormat), to.Format(util.DateFormat)).
		Order("plan_date").
		Find(&plans).Error
	return plans, err
}

// ReplaceItems 整体替换计划内容：旧项标记 superseded 并软删除，
// 新项与计划字段更新在同一事务内落库
func (r *PlanRepository) ReplaceItems(plan *model.StudyPlan, items []model.PlanItem) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PlanItem{}).
			Where("plan_id = ? AND superseded = ?", plan.ID, false).
			Update("superseded", true).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_id = ? AND superseded = ?", plan.ID, true).
			Delete(&model.PlanItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].PlanID = plan.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.StudyPlan{}).Where("id = ?", plan.ID).
			Updates(map[string]interface{}{
				"notes":       plan.Notes,
				"template_id": plan.TemplateID,
				"status":      plan.Status,
			}).Error
	})
}

func (r *PlanRepository) Publish(planID, publisherID uint, at time.Time) error {
	res := r.DB.Model(&model.StudyPlan{}).
		Where("id = ? AND status = ?", planID, model.PlanDraft).
		Updates(map[string]interface{}{
			"status":       model.PlanPublished,
			"published_by": publisherID,
			"published_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrInvalidStatus
	}
	return nil
}

func (r *PlanRepository) UpdateStatus(planID uint, status model.PlanStatus) error {
	return r.DB.Model(&model.StudyPlan{}).
		Where("id = ?", planID).
		Update("status", status).
		Error
}

// Delete 物理删除，腾出该学生当天的唯一键位置；评审日志保留作审计
func (r *PlanRepository) Delete(planID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("plan_id = ?", planID).Delete(&model.PlanItem{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.StudyPlan{}, planID).Error
	})
}

func (r *PlanRepository) FindItemByID(itemID uint) (*model.PlanItem, error) {
	var item model.PlanItem
	err := r.DB.First(&item, itemID).Error
	return &item, err
}

func (r *PlanRepository) FindItemWithPlan(itemID uint) (*model.PlanItem, *model.StudyPlan, error) {
	var item model.PlanItem
	if err := r.DB.First(&item, itemID).Error; err != nil {
		return nil, nil, err
	}
	var plan model.StudyPlan
	if err := r.DB.First(&plan, item.PlanID).Error; err != nil {
		return nil, nil, err
	}
	return &item, &plan, nil
}

func (r *PlanRepository) UpdateItemStudentStatus(itemID uint, status model.StudentStatus) error {
	return r.DB.Model(&model.PlanItem{}).
		Where("id = ?", itemID).
		Update("student_status", status).
		Error
}

// SubmitItem 条件更新：仅当评审仍为 pending 且未锁定时生效，
// 手动补报分钟只会抬高累计秒数，不会降低
func (r *PlanRepository) SubmitItem(itemID uint, comment string, manualMinutes int, at time.Time) error {
	updates := map[string]interface{}{
		"student_status":  model.StudentSubmitted,
		"student_comment": comment,
		"submitted_at":    at,
	}
	if manualMinutes > 0 {
		updates["manual_minutes"] = manualMinutes
		updates["actual_seconds"] = gorm.Expr("GREATEST(actual_seconds, ?)", manualMinutes*60)
	}
	res := r.DB.Model(&model.PlanItem{}).
		Where("id = ? AND review_status = ? AND locked = ?", itemID, model.ReviewPending, false).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAlreadyLocked
	}
	return nil
}

// ResetItem 学生自助重置：回到 pending，清提交时间与留言，计数加一
// 条件里带上计数上限，并发下也不会越过限额
func (r *PlanRepository) ResetItem(itemID uint, maxResets int) error {
	res := r.DB.Model(&model.PlanItem{}).
		Where("id = ? AND review_status = ? AND locked = ? AND student_reset_count < ?",
			itemID, model.ReviewPending, false, maxResets).
		Updates(map[string]interface{}{
			"student_status":      model.StudentPending,
			"student_comment":     "",
			"submitted_at":        nil,
			"student_reset_count": gorm.Expr("student_reset_count + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrResetLimitReached
	}
	return nil
}

// ResetItemTime 清空某计划项的全部计时：作废所有计时段并把累计秒数归零
// 评审使用，例如学生误开计时器刷满一整天
func (r *PlanRepository) ResetItemTime(itemID uint, at time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.TimerSession{}).
			Where("plan_item_id = ? AND ended_at IS NULL", itemID).
			Updates(map[string]interface{}{
				"ended_at":         at,
				"duration_seconds": 0,
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("plan_item_id = ?", itemID).
			Delete(&model.TimerSession{}).Error; err != nil {
			return err
		}
		return tx.Model(&model.PlanItem{}).
			Where("id = ?", itemID).
			Updates(map[string]interface{}{
				"actual_seconds": 0,
				"manual_minutes": 0,
			}).Error
	})
}

// ApplyReview 评审落库：条件更新（仍为 pending 且未锁定）+ 审计记录，同一事务。
// 并发评审只有一个能成功，败者拿到 ErrAlreadyLocked，审计日志每项恰好一条
func (r *PlanRepository) ApplyReview(itemID, reviewerID uint, from, to model.ReviewStatus, comment string, origin model.ReviewOrigin, at time.Time, override bool) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&model.PlanItem{}).Where("id = ?", itemID)
		if !override {
			q = q.Where("review_status = ? AND locked = ?", model.ReviewPending, false)
		}
		res := q.Updates(map[string]interface{}{
			"review_status":  to,
			"review_comment": comment,
			"review_by":      reviewerID,
			"review_at":      at,
			"locked":         true,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAlreadyLocked
		}
		return tx.Create(&model.ReviewLog{
			PlanItemID:     itemID,
			ReviewerID:     reviewerID,
			FromStatus:     from,
			ToStatus:       to,
			Comment:        comment,
			DecidedAt:      at,
			OriginatedFrom: origin,
		}).Error
	})
}

// LockStalePlans 把截止日期早于 before 的已发布计划整体锁定，返回受影响数量
func (r *PlanRepository) LockStalePlans(before time.Time) (int64, error) {
	res := r.DB.Model(&model.StudyPlan{}).
		Where("status = ? AND plan_date < ?", model.PlanPublished, before.Format(util.DateFormat)).
		Update("status", model.PlanLocked)
	return res.RowsAffected, res.Error
}

// ListItemsByStudentAndRange 跨计划取某学生一段日期内的全部有效计划项（报表用）
func (r *PlanRepository) ListItemsByStudentAndRange(studentID uint, from, to time.Time) ([]*model.PlanItem, error) {
	var items []*model.PlanItem
	err := r.DB.
		Joins("JOIN study_plans ON study_plans.id = plan_items.plan_id AND study_plans.deleted_at IS NULL").
		Where("study_plans.student_id = ? AND study_plans.plan_date >= ? AND study_plans.plan_date <= ?",
			studentID, from.Format(util.DateFormat), to.Format(util.DateFormat)).
		Where("plan_items.superseded = ?", false).
		Order("study_plans.plan_date, plan_items.order_index").
		Find(&items).Error
	return items, err
}

// CountPendingReviews 某学生一段日期内已提交待评审的项数
func (r *PlanRepository) CountPendingReviews(studentID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.DB.Model(&model.PlanItem{}).
		Joins("JOIN study_plans ON study_plans.id = plan_items.plan_id AND study_plans.deleted_at IS NULL").
		Where("study_plans.student_id = ? AND study_plans.plan_date >= ? AND study_plans.plan_date <= ?",
			studentID, from.Format(util.DateFormat), to.Format(util.DateFormat)).
		Where("plan_items.superseded = ? AND plan_items.student_status = ? AND plan_items.review_status = ?",
			false, model.StudentSubmitted, model.ReviewPending).
		Count(&count).Error
	return count, err
}
