package repository

import (
	"time"

	"studycoach_backend/internal/model"
	"studycoach_backend/internal/util"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.TimerSession) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) FindByID(sessionID uint) (*model.TimerSession, error) {
	var session model.TimerSession
	err := r.DB.First(&session, sessionID).Error
	return &session, err
}

func (r *SessionRepository) FindForItem(sessionID, itemID uint) (*model.TimerSession, error) {
	var session model.TimerSession
	err := r.DB.Where("id = ? AND plan_item_id = ?", sessionID, itemID).
		First(&session).Error
	return &session, err
}

func (r *SessionRepository) ListByItem(itemID uint) ([]*model.TimerSession, error) {
	var sessions []*model.TimerSession
	err := r.DB.Where("plan_item_id = ?", itemID).
		Order("started_at").
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepository) CountOpenByItem(itemID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TimerSession{}).
		Where("plan_item_id = ? AND ended_at IS NULL", itemID).
		Count(&count).Error
	return count, err
}

// Close 关闭计时段并把时长累加到计划项，两步在同一事务。
// 条件更新只命中仍然打开的记录，重复关闭返回 ErrAlreadyStopped，
// 累计秒数绝不会被同一段计时加两次
func (r *SessionRepository) Close(sessionID, itemID uint, endedAt time.Time, seconds int) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.TimerSession{}).
			Where("id = ? AND plan_item_id = ? AND ended_at IS NULL", sessionID, itemID).
			Updates(map[string]interface{}{
				"ended_at":         endedAt,
				"duration_seconds": seconds,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrAlreadyStopped
		}
		if seconds == 0 {
			return nil
		}
		return tx.Model(&model.PlanItem{}).
			Where("id = ?", itemID).
			UpdateColumn("actual_seconds", gorm.Expr("actual_seconds + ?", seconds)).
			Error
	})
}

// Void 作废一段已关闭的计时：软删除记录并从计划项扣回时长
func (r *SessionRepository) Void(sessionID, itemID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var session model.TimerSession
		if err := tx.Where("id = ? AND plan_item_id = ?", sessionID, itemID).
			First(&session).Error; err != nil {
			return err
		}
		if session.Open() {
			return util.ErrInvalidStatus
		}
		if err := tx.Delete(&session).Error; err != nil {
			return err
		}
		if session.DurationSeconds == 0 {
			return nil
		}
		return tx.Model(&model.PlanItem{}).
			Where("id = ?", itemID).
			UpdateColumn("actual_seconds", gorm.Expr("GREATEST(actual_seconds - ?, 0)", session.DurationSeconds)).
			Error
	})
}
